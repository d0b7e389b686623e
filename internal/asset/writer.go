package asset

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Asset describes a stored attachment; callers keep only these references.
type Asset struct {
	URL       string `json:"url"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}

type FSWriter struct {
	AssetsDir     string
	PublicBaseURL string
}

func NewFSWriter(assetsDir, publicBaseURL string) *FSWriter {
	return &FSWriter{AssetsDir: assetsDir, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Upload stores the bytes under folder/ownerID and returns the reference.
// The stored name is prefixed with a random id so uploads never collide.
func (w *FSWriter) Upload(data []byte, folder, ownerID, filename string) (*Asset, error) {
	dir := filepath.Join(w.AssetsDir, folder, ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}

	name := uuid.NewString()[:8] + "-" + filepath.Base(filename)
	out := filepath.Join(dir, name)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return nil, fmt.Errorf("write asset: %w", err)
	}

	mediaType := mime.TypeByExtension(filepath.Ext(filename))
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}

	return &Asset{
		URL:       w.buildURL("/assets/" + folder + "/" + ownerID + "/" + name),
		Name:      filepath.Base(filename),
		MediaType: mediaType,
		Size:      int64(len(data)),
	}, nil
}

func (w *FSWriter) buildURL(path string) string {
	if w.PublicBaseURL == "" {
		return path
	}
	return w.PublicBaseURL + path
}
