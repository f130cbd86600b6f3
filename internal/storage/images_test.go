package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAndPath(t *testing.T) {
	s, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	data := []byte{0xff, 0xd8, 0xff, 0xe0} // jpeg magic, content is irrelevant here
	ref, err := s.Store(data, "specimen.JPG")
	require.NoError(t, err)

	// The reference keeps the extension (lower-cased) and carries no path.
	assert.Equal(t, ".jpg", filepath.Ext(ref))
	assert.NotContains(t, ref, "/")

	p, err := s.Path(ref)
	require.NoError(t, err)
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStoreRejectsUnknownExtension(t *testing.T) {
	s, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Store([]byte("not an image"), "payload.exe")
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestStoreGeneratesDistinctNames(t *testing.T) {
	s, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	a, err := s.Store([]byte("one"), "a.png")
	require.NoError(t, err)
	b, err := s.Store([]byte("two"), "a.png")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDelete(t *testing.T) {
	s, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	ref, err := s.Store([]byte("img"), "x.png")
	require.NoError(t, err)

	assert.True(t, s.Delete(ref), "existing file should be deleted")
	_, err = s.Path(ref)
	assert.True(t, os.IsNotExist(err))

	// A reference that never existed counts as deleted.
	assert.True(t, s.Delete("0123456789abcdef.png"))

	// Traversal attempts are refused outright.
	assert.False(t, s.Delete("../escape.png"))
}

func TestValidRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{name: "plain hex name", ref: "a1b2c3.jpg", wantErr: false},
		{name: "webp allowed", ref: "deadbeef.webp", wantErr: false},
		{name: "empty", ref: "", wantErr: true},
		{name: "forward slash", ref: "sub/dir.png", wantErr: true},
		{name: "backslash", ref: `sub\dir.png`, wantErr: true},
		{name: "dot segments", ref: "..png", wantErr: true},
		{name: "traversal", ref: "../../etc/passwd.png", wantErr: true},
		{name: "disallowed extension", ref: "a1b2c3.svg", wantErr: true},
		{name: "no extension", ref: "a1b2c3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidRef(tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRef)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
