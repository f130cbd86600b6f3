// Package storage persists specimen images on the local filesystem.  The
// database rows only hold an opaque reference (the generated file name);
// everything under the upload directory is owned by this package.  Storing a
// new image is a hard dependency of create/update flows, while deleting a
// superseded image is best effort and must never fail a mutation.
package storage

import (
	"crypto/rand"   // secure random number generation for file names
	"encoding/hex"  // hex encoding of the random name
	"errors"        // sentinel error definitions
	"os"            // file system operations
	"path/filepath" // safe path joining and extension handling
	"strings"       // reference validation helpers
)

// ErrInvalidRef is returned when a reference contains path separators or
// otherwise does not look like a name this store would have generated.  It
// guards the image serving endpoint against path traversal.
var ErrInvalidRef = errors.New("invalid image reference")

// allowedExtensions restricts stored files to common web image formats.  The
// extension is taken from the uploaded file name and lower‑cased.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore writes and removes image files inside a single directory.
type ImageStore struct {
	dir string // dir is the root directory holding all stored images
}

// NewImageStore creates the upload directory if necessary and returns a
// store rooted there.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ImageStore{dir: dir}, nil
}

// Store writes the image bytes to a freshly generated file name that keeps
// the original extension, and returns the reference to record in the
// database.  The write happens via a unique name so a failed write never
// clobbers an existing image.
func (s *ImageStore) Store(data []byte, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", ErrInvalidRef
	}
	name, err := randomHex(16) // 16 bytes -> 32 hex chars
	if err != nil {
		return "", err
	}
	ref := name + ext
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o644); err != nil {
		return "", err
	}
	return ref, nil
}

// Delete removes a stored image and reports whether the file is gone.  A
// reference that never existed counts as deleted.  Invalid references are
// refused so a corrupted database value can never escape the upload
// directory.
func (s *ImageStore) Delete(ref string) bool {
	if ValidRef(ref) != nil {
		return false
	}
	err := os.Remove(filepath.Join(s.dir, ref))
	return err == nil || os.IsNotExist(err)
}

// Path resolves a reference to the absolute file path for serving.  It
// returns ErrInvalidRef for names the store could not have produced and
// os.ErrNotExist when the file is missing.
func (s *ImageStore) Path(ref string) (string, error) {
	if err := ValidRef(ref); err != nil {
		return "", err
	}
	p := filepath.Join(s.dir, ref)
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return p, nil
}

// ValidRef checks that a reference is a bare file name with an allowed image
// extension.  References are generated as hex names so anything containing a
// separator or a dot‑segment is rejected.
func ValidRef(ref string) error {
	if ref == "" || strings.ContainsAny(ref, "/\\") || strings.Contains(ref, "..") {
		return ErrInvalidRef
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(ref))] {
		return ErrInvalidRef
	}
	return nil
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.  It is used to produce file names
// that cannot collide in practice.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
