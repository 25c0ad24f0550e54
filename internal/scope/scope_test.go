package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		token   string
		want    Scope
		wantErr bool
	}{
		{"all", Global, false},
		{"global", Global, false},
		{"1", Monitor(1), false},
		{"12", Monitor(12), false},
		{"0", Global, true},
		{"-1", Global, true},
		{"abc", Global, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     Scope
		wantRest []string
		wantErr  bool
	}{
		{"no args", nil, Global, []string{}, false},
		{"leading scope", []string{"2", "back"}, Monitor(2), []string{"back"}, false},
		{"trailing scope", []string{"back", "2"}, Monitor(2), []string{"back"}, false},
		{"scope between flags", []string{"--sfw", "3", "--sorting", "random"}, Monitor(3), []string{"--sfw", "--sorting", "random"}, false},
		{"flag value is not a scope", []string{"--keep", "30"}, Global, []string{"--keep", "30"}, false},
		{"flag=value is not consumed", []string{"--keep=30", "1"}, Monitor(1), []string{"--keep=30"}, false},
		{"same scope twice is fine", []string{"1", "back", "1"}, Monitor(1), []string{"back"}, false},
		{"two scopes", []string{"1", "2"}, Global, nil, true},
		{"zero is invalid", []string{"0"}, Global, nil, true},
		{"after terminator untouched", []string{"--", "5"}, Global, []string{"--", "5"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest, err := Extract(tt.args)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestScope_Key(t *testing.T) {
	assert.Equal(t, "global", Global.Key())
	assert.Equal(t, "monitor-2", Monitor(2).Key())
	assert.Equal(t, "all monitors", Global.String())
	assert.Equal(t, "monitor 2", Monitor(2).String())
	assert.True(t, Global.IsGlobal())
	assert.Equal(t, 2, Monitor(2).Index())
}
