// Package source holds the bytes behind open documents, keyed by opaque
// handles that are revoked when their session closes.
package source

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

const handlePrefix = "blob:"

var pdfMagic = []byte("%PDF-")

// Blob is a stored document source.
type Blob struct {
	Name string
	Kind models.DocumentKind
	Data []byte
}

type Store struct {
	mu     sync.RWMutex
	blobs  map[models.SourceHandle]Blob
	logger *logger.Logger
}

func NewStore(log *logger.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		blobs:  make(map[models.SourceHandle]Blob),
		logger: log,
	}
}

// Put stores data and returns a fresh handle for it.
func (s *Store) Put(name string, kind models.DocumentKind, data []byte) models.SourceHandle {
	h := models.SourceHandle(handlePrefix + uuid.New().String())

	s.mu.Lock()
	s.blobs[h] = Blob{Name: name, Kind: kind, Data: data}
	s.mu.Unlock()

	s.logger.Debug("Stored %s source %q as %s (%d bytes)", kind, name, h, len(data))
	return h
}

func (s *Store) Get(h models.SourceHandle) (Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[h]
	if !ok {
		return Blob{}, apperrors.NewValidationError("unknown source handle", nil, string(h))
	}
	return b, nil
}

// Revoke releases h. Revoking an unknown handle is a no-op.
func (s *Store) Revoke(h models.SourceHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[h]; !ok {
		return false
	}
	delete(s.blobs, h)
	s.logger.Debug("Revoked %s", h)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// DetectKind classifies a document by content, falling back to the file
// extension when the content is inconclusive.
func DetectKind(name string, data []byte) (models.DocumentKind, error) {
	if bytes.HasPrefix(data, pdfMagic) {
		return models.KindPaged, nil
	}
	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") {
		return models.KindRasterImage, nil
	}
	if kind, ok := KindForExtension(filepath.Ext(name)); ok {
		return kind, nil
	}
	return 0, apperrors.NewValidationError("unsupported document", nil, fmt.Sprintf("name=%s", name))
}

// KindForExtension maps a file extension (with or without the dot) to a kind.
func KindForExtension(ext string) (models.DocumentKind, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return models.KindPaged, true
	case "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp":
		return models.KindRasterImage, true
	}
	return 0, false
}
