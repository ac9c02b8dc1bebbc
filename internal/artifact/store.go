package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var (
	// ErrNotFound is returned by Load when no artifact has the given name.
	ErrNotFound = errors.New("artifact: not found")
	// ErrUnavailable is returned by the snapshot helpers when no store is configured.
	ErrUnavailable = errors.New("artifact: store unavailable")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store saves and loads named documents. Save returns where the document went
// (a path or a key).
type Store interface {
	Save(ctx context.Context, name string, d Document) (string, error)
	Load(ctx context.Context, name string) (Document, error)
}

func checkName(name string) error {
	if !nameRe.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("artifact: invalid name %q", name)
	}
	return nil
}

// FileStore keeps each artifact as <Dir>/<name>.md.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, name+".md")
}

func (s *FileStore) Save(_ context.Context, name string, d Document) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	b, err := d.Encode()
	if err != nil {
		return "", err
	}
	p := s.path(name)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, p); err != nil {
		return "", err
	}
	return p, nil
}

func (s *FileStore) Load(_ context.Context, name string) (Document, error) {
	if err := checkName(name); err != nil {
		return Document{}, err
	}
	b, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Document{}, err
	}
	return Parse(bytes.NewReader(b))
}
