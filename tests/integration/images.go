package integration

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	appcatalog "github.com/wzledger/backend/internal/application/catalog"
)

var _ appcatalog.ImageStorage = (*ImageStore)(nil)

// StoredImage is an upload captured by ImageStore
type StoredImage struct {
	ContentType string
	Data        []byte
}

// ImageStore stands in for the S3 bucket and keeps uploads for assertions
type ImageStore struct {
	baseURL string

	mu      sync.Mutex
	objects map[string]StoredImage
}

// NewImageStore creates an empty store whose URLs start with baseURL
func NewImageStore(baseURL string) *ImageStore {
	return &ImageStore{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]StoredImage)}
}

func (s *ImageStore) Upload(_ context.Context, key string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(io.LimitReader(body, size+1))
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("object size mismatch: declared %d, read %d", size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = StoredImage{ContentType: contentType, Data: data}
	return nil
}

func (s *ImageStore) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

func (s *ImageStore) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Get returns the upload stored under key
func (s *ImageStore) Get(key string) (StoredImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}
