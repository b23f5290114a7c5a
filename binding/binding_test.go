package binding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var data any
	require.NoError(t, json.Unmarshal([]byte(s), &data))
	return data
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"book":{"title":"Dune","pages":412,"tags":["sf","classic"]},"ratio":0.5}`)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "no placeholders", "no placeholders"},
		{"nested", "${book.title} has ${book.pages} pages", "Dune has 412 pages"},
		{"index", "tag: ${book.tags[1]}", "tag: classic"},
		{"float", "${ratio}", "0.5"},
		{"missing kept", "${book.author}", "${book.author}"},
		{"fallback", "${book.author|unknown}", "unknown"},
		{"empty fallback", "[${book.author|}]", "[]"},
		{"fallback ignored when found", "${book.title|x}", "Dune"},
		{"out of range", "${book.tags[5]}", "${book.tags[5]}"},
		{"bad index", "${book.tags[x]|?}", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Interpolate(tt.in, data))
		})
	}
}

func TestInterpolateNilData(t *testing.T) {
	require.Equal(t, "${a}", Interpolate("${a}", nil))
	require.Equal(t, "b", Interpolate("${a|b}", nil))
}

func TestLookup(t *testing.T) {
	data := decode(t, `{"a":[{"b":[1,2,{"c":"deep"}]}]}`)
	v, ok := Lookup(data, "a[0].b[2].c")
	require.True(t, ok)
	require.Equal(t, "deep", v)

	_, ok = Lookup(data, "a.b")
	require.False(t, ok)
}
