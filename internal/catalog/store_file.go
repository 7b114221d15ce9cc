package catalog

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// FileStore serves the catalog from a static JSON file. A missing or broken
// file leaves the catalog empty; Reload picks up edits.
type FileStore struct {
	*MemStore
	path string
	log  *zap.Logger
}

func OpenFile(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &FileStore{MemStore: NewMemStore(), path: path, log: log}
	s.Reload()
	return s
}

func (s *FileStore) Path() string { return s.path }

// Reload re-reads the file and returns the number of products now served.
func (s *FileStore) Reload() int {
	f, err := os.Open(s.path)
	if err != nil {
		s.log.Warn("catalog file unreadable, serving empty catalog",
			zap.String("path", s.path), zap.Error(err))
		s.Replace(nil)
		return 0
	}
	defer f.Close()

	products, dropped := Decode(f)
	if dropped > 0 {
		s.log.Warn("catalog entries dropped", zap.String("path", s.path), zap.Int("dropped", dropped))
	}
	s.Replace(products)

	n := s.Len()
	s.log.Info("catalog loaded", zap.String("path", s.path), zap.Int("products", n))
	return n
}

func (s *FileStore) Ping(context.Context) error {
	_, err := os.Stat(s.path)
	return err
}
