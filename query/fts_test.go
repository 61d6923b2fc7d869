package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "simple", in: "Boston", want: []string{"boston"}},
		{name: "multi word", in: "123 Main St Boston", want: []string{"123", "main", "st", "boston"}},
		{name: "empty", in: "", want: nil},
		{name: "whitespace only", in: "   \t\n ", want: nil},
		{name: "punctuation only", in: "?!...,;", want: nil},
		{name: "punctuation stripped", in: "foo,bar", want: []string{"foobar"}},
		{name: "hyphen kept", in: "Baden-Baden", want: []string{"baden-baden"}},
		{name: "whitespace collapsed", in: "  new   york  ", want: []string{"new", "york"}},
		{name: "unicode letters kept", in: "Zürich 北京", want: []string{"zürich", "北京"}},
		{name: "fts operators neutralized", in: `"main" AND (st OR ave)`, want: []string{"main", "and", "st", "or", "ave"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestBuildMatch(t *testing.T) {
	assert.Equal(t, "", BuildMatch(nil, true))
	assert.Equal(t, `"boston"`, BuildMatch([]string{"boston"}, false))
	assert.Equal(t, `"boston"*`, BuildMatch([]string{"boston"}, true))
	assert.Equal(t, `"main" "st" "bost"*`, BuildMatch([]string{"main", "st", "bost"}, true))
	assert.Equal(t, `"main" "st" "bost"`, BuildMatch([]string{"main", "st", "bost"}, false))
}
