package http

import (
	"bytes"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestEncodeBody_JSON(t *testing.T) {
	r, n, err := EncodeBody(map[string]int{"a": 1}, JSON)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, readAll(t, r))
	assert.Equal(t, int64(7), n)
}

func TestEncodeBody_Nil(t *testing.T) {
	for _, ct := range []ContentType{JSON, URLFormEncoded, Blob} {
		r, n, err := EncodeBody(nil, ct)
		require.NoError(t, err)
		assert.Nil(t, r)
		assert.Zero(t, n)
	}
}

func TestEncodeBody_JSONError(t *testing.T) {
	_, _, err := EncodeBody(map[string]any{"f": func() {}}, JSON)
	assert.Error(t, err)
}

func TestEncodeBody_Blob(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		want    string
		wantLen int64
	}{
		{"bytes", []byte("abc"), "abc", 3},
		{"string", "hello", "hello", 5},
		{"buffer", bytes.NewBufferString("buf"), "buf", 3},
		{"reader", io.NopCloser(strings.NewReader("rdr")), "rdr", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, n, err := EncodeBody(tt.body, Blob)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, n)
			assert.Equal(t, tt.want, readAll(t, r))
		})
	}
}

func TestEncodeBody_BlobUnsupported(t *testing.T) {
	_, _, err := EncodeBody(struct{}{}, Blob)
	assert.ErrorIs(t, err, ErrUnsupportedBody)
}

func TestEncodeBody_UnknownContentType(t *testing.T) {
	_, _, err := EncodeBody("x", ContentType(9))
	assert.ErrorIs(t, err, ErrUnknownContentType)
}

func TestFormEncode(t *testing.T) {
	type address struct {
		City string `json:"city"`
	}
	type person struct {
		Name    string  `json:"name"`
		Age     int     `json:"age"`
		Address address `json:"address"`
	}

	tests := []struct {
		name string
		body any
		want string
	}{
		{
			name: "flat map sorted",
			body: map[string]any{"b": 2, "a": "x y"},
			want: "a=x+y&b=2",
		},
		{
			name: "nested map",
			body: map[string]any{"a": map[string]any{"b": "c"}},
			want: "a%5Bb%5D=c",
		},
		{
			name: "scalar slice",
			body: map[string]any{"ids": []int{1, 2}},
			want: "ids%5B%5D=1&ids%5B%5D=2",
		},
		{
			name: "slice of objects",
			body: map[string]any{"items": []map[string]any{{"n": 1}, {"n": 2}}},
			want: "items%5B0%5D%5Bn%5D=1&items%5B1%5D%5Bn%5D=2",
		},
		{
			name: "nil value",
			body: map[string]any{"a": nil},
			want: "a=",
		},
		{
			name: "bool and reserved chars",
			body: map[string]string{"q": "a&b=c", "on": "true"},
			want: "on=true&q=a%26b%3Dc",
		},
		{
			name: "struct with json tags",
			body: person{Name: "Ann", Age: 30, Address: address{City: "New York"}},
			want: "address%5Bcity%5D=New+York&age=30&name=Ann",
		},
		{
			name: "url.Values passthrough",
			body: url.Values{"k": {"v w"}},
			want: "k=v+w",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormEncode(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormEncode_Unsupported(t *testing.T) {
	_, err := FormEncode(42)
	assert.ErrorIs(t, err, ErrUnsupportedBody)
}

func TestContentType(t *testing.T) {
	tests := []struct {
		ct   ContentType
		name string
		mime string
	}{
		{JSON, "json", "application/json; charset=UTF-8"},
		{URLFormEncoded, "form", "application/x-www-form-urlencoded; charset=UTF-8"},
		{Blob, "blob", "application/octet-stream; charset=UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.ct.String())
			assert.Equal(t, tt.mime, tt.ct.MimeType())

			parsed, err := ParseContentType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.ct, parsed)
		})
	}

	var zero ContentType
	assert.Equal(t, JSON, zero)

	_, err := ParseContentType("xml")
	assert.ErrorIs(t, err, ErrUnknownContentType)
}
