package datapath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	data := map[string]any{
		"crypto": map[string]any{
			"bitcoin": map[string]any{"price": 45230, "change": 2.84},
		},
		"github": map[string]any{
			"trending": []any{
				map[string]any{"name": "react"},
			},
		},
		"empty": nil,
		"label": "text",
	}

	tests := []struct {
		name   string
		path   string
		want   any
		wantOK bool
	}{
		{name: "leading slash", path: "/crypto/bitcoin/price", want: 45230, wantOK: true},
		{name: "no leading slash", path: "crypto/bitcoin/change", want: 2.84, wantOK: true},
		{name: "array index", path: "/github/trending/0/name", want: "react", wantOK: true},
		{name: "array index out of range", path: "/github/trending/3", wantOK: false},
		{name: "array non-numeric", path: "/github/trending/first", wantOK: false},
		{name: "missing segment", path: "/crypto/dogecoin", wantOK: false},
		{name: "through nil", path: "/empty/value", wantOK: false},
		{name: "through primitive", path: "/label/length", wantOK: false},
		{name: "nil leaf", path: "/empty", want: nil, wantOK: true},
		{name: "empty path", path: "", want: data, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(data, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	assert.Nil(t, Segments(""))
	assert.Equal(t, []string{"a", "b"}, Segments("/a/b"))
	assert.Equal(t, []string{"a", "b"}, Segments("a/b"))
	assert.Equal(t, []string{""}, Segments("/"))
}
