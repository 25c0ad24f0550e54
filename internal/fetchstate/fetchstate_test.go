package fetchstate

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, max int) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "fetch-state.tsv"), max)
}

func TestLoad_Default(t *testing.T) {
	s := newTestStore(t, 10)
	rec, err := s.Load("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 1}, rec)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Save("other", 3, ""))
	require.NoError(t, s.Save("fp", 7, "x"))

	rec, err := s.Load("fp")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 7, Seed: "x"}, rec)

	rec, err = s.Load("other")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 3}, rec, "unrelated records untouched")
}

func TestSave_Upserts(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Save("a", 1, ""))
	require.NoError(t, s.Save("b", 1, ""))
	require.NoError(t, s.Save("a", 2, "s"))

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "b\t1\t\na\t2\ts\n", string(data), "updated record becomes newest")
}

func TestSave_ExactMatchNotPrefix(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Save("abc", 4, "s1"))
	require.NoError(t, s.Save("ab", 2, ""))

	rec, err := s.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 4, Seed: "s1"}, rec)
}

func TestSave_Bounded(t *testing.T) {
	s := newTestStore(t, 3)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(fmt.Sprintf("fp%d", i), i+1, ""))
	}

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rec, err := s.Load("fp0")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 1}, rec, "oldest evicted")

	rec, err = s.Load("fp4")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 5}, rec)
}

func TestAdvance_KeepsSeed(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Advance("new"))
	rec, err := s.Load("new")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 2}, rec)

	require.NoError(t, s.Save("fp", 2, "s1"))
	require.NoError(t, s.Advance("fp"))
	rec, err = s.Load("fp")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 3, Seed: "s1"}, rec)
}

func TestReset(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Save("fp", 9, "seed"))
	require.NoError(t, s.Save("keep", 2, ""))
	require.NoError(t, s.Reset("fp"))

	rec, err := s.Load("fp")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 1}, rec)

	rec, err = s.Load("keep")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 2}, rec)

	require.NoError(t, s.Reset("missing"))
}

func TestLoad_Malformed(t *testing.T) {
	s := newTestStore(t, 10)
	content := "bad\tnot-a-number\tseed\nneg\t-2\t\nok\t5\tz\njunk line without tabs\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

	for _, fp := range []string{"bad", "neg", "junk line without tabs"} {
		rec, err := s.Load(fp)
		require.NoError(t, err)
		assert.Equal(t, Record{Page: 1}, rec, fp)
	}

	rec, err := s.Load("ok")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 5, Seed: "z"}, rec)

	// A save replaces a malformed record for the same fingerprint.
	require.NoError(t, s.Save("bad", 2, ""))
	rec, err = s.Load("bad")
	require.NoError(t, err)
	assert.Equal(t, Record{Page: 2}, rec)
}

func TestSave_RejectsInvalidFingerprint(t *testing.T) {
	s := newTestStore(t, 10)
	assert.Error(t, s.Save("", 1, ""))
	assert.Error(t, s.Save("a\tb", 1, ""))
}
