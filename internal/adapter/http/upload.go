package httpadapter

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"echopub/internal/core/port"
)

var allowedProofExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// Uploads stores proof screenshots on local disk and serves them under
// PublicURL.
type Uploads struct {
	Dir       string
	PublicURL string
	MaxBytes  int64
}

// Save reads the multipart "file" field into Dir.
func (u Uploads) Save(w http.ResponseWriter, r *http.Request) (port.ProofUpload, error) {
	maxBytes := u.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return port.ProofUpload{}, fmt.Errorf("%w: %v", port.ErrInvalidInput, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return port.ProofUpload{}, fmt.Errorf("%w: file is required", port.ErrInvalidInput)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedProofExt[ext] {
		return port.ProofUpload{}, fmt.Errorf("%w: unsupported file type %q", port.ErrInvalidInput, ext)
	}
	if err = os.MkdirAll(u.Dir, 0o755); err != nil {
		return port.ProofUpload{}, err
	}
	name := uuid.NewString() + ext
	path := filepath.Join(u.Dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return port.ProofUpload{}, err
	}
	if _, err = io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return port.ProofUpload{}, err
	}
	if err = dst.Close(); err != nil {
		_ = os.Remove(path)
		return port.ProofUpload{}, err
	}
	return port.ProofUpload{
		Path: path,
		URL:  strings.TrimRight(u.PublicURL, "/") + "/uploads/" + name,
	}, nil
}

// Remove deletes a stored proof that was not accepted.
func (u Uploads) Remove(p port.ProofUpload) {
	if p.Path != "" {
		_ = os.Remove(p.Path)
	}
}
