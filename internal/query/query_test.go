package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Term
		canon string
	}{
		{"empty", "", nil, ""},
		{"whitespace only", "   \t ", nil, ""},
		{"plain words", "mountain  lake", []Term{{Text: "mountain"}, {Text: "lake"}}, "mountain lake"},
		{"include and exclude", "+forest -people", []Term{{Text: "forest", Mode: Include}, {Text: "people", Mode: Exclude}}, "+forest -people"},
		{"quoted phrase", `"night sky" city`, []Term{{Text: "night sky", Phrase: true}, {Text: "city"}}, `"night sky" city`},
		{"excluded phrase", `-"red car"`, []Term{{Text: "red car", Mode: Exclude, Phrase: true}}, `-"red car"`},
		{"included phrase", `+"blue  hour"`, []Term{{Text: "blue hour", Mode: Include, Phrase: true}}, `+"blue hour"`},
		{"unterminated quote runs to end", `sea "open water`, []Term{{Text: "sea"}, {Text: "open water", Phrase: true}}, `sea "open water"`},
		{"empty phrase dropped", `"" cat`, []Term{{Text: "cat"}}, "cat"},
		{"bare prefixes dropped", "+ - dog -", []Term{{Text: "dog"}}, "dog"},
		{"adjacent phrase and word", `"a b"c`, []Term{{Text: "a b", Phrase: true}, {Text: "c"}}, `"a b" c`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.input)
			assert.Equal(t, tt.want, q.Terms)
			assert.Equal(t, tt.canon, q.String())
		})
	}
}

func TestQuery_ExclusionOnly(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"-anime", true},
		{"-anime -cars", true},
		{`-"red car"`, true},
		{`-"red car" -"blue sky"`, true},
		{`-"red car" sunset`, false},
		{"-anime +city", false},
		{"nature", false},
		{`-""`, false},
		{"- -", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input).ExclusionOnly())
		})
	}
}

func TestQuery_Label(t *testing.T) {
	assert.Equal(t, "forest night sky", Parse(`+forest -people "night sky"`).Label())
	assert.Equal(t, "", Parse("-people").Label())
	assert.Equal(t, "", Parse("").Label())
}

func TestQuery_Normalized(t *testing.T) {
	assert.Equal(t, `+forest -"big city"`, Parse(`  +Forest   -"Big   City" `).Normalized())
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Mountain Lake", "mountain-lake"},
		{"  --Night__Sky!!  ", "night-sky"},
		{"Café Crème", "cafe-creme"},
		{"São Paulo/Brasil", "sao-paulo-brasil"},
		{"日本", ""},
		{"a   b", "a-b"},
		{"../../etc/passwd", "etc-passwd"},
		{"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstu"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Sanitize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxLabelLen)
		})
	}
}
