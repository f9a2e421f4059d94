package sessions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nmsportal/backend/libs/aimcsv"
	"nmsportal/backend/libs/derive"
	"nmsportal/backend/services/portal-service/internal/models"
)

const sessionExt = ".csv"

// ErrNotFound indicates an unknown or invalid session name.
var ErrNotFound = errors.New("session not found")

// Store serves session exports from a single folder. Names are bare file names.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// List returns the session files sorted by name.
func (s *Store) List() ([]models.SessionFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("sessions: read dir: %w", err)
	}

	var files []models.SessionFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), sessionExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, toSessionFile(info))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Stat describes a single session file.
func (s *Store) Stat(name string) (models.SessionFile, error) {
	path, err := s.path(name)
	if err != nil {
		return models.SessionFile{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.SessionFile{}, ErrNotFound
		}
		return models.SessionFile{}, fmt.Errorf("sessions: stat %s: %w", name, err)
	}
	if info.IsDir() {
		return models.SessionFile{}, ErrNotFound
	}
	return toSessionFile(info), nil
}

// Load reads and parses a session file.
func (s *Store) Load(name string) (*derive.Table, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	table, err := aimcsv.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return table, err
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", ErrNotFound
	}
	if !strings.EqualFold(filepath.Ext(name), sessionExt) {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, name), nil
}

func toSessionFile(info fs.FileInfo) models.SessionFile {
	return models.SessionFile{
		Name:     info.Name(),
		Size:     info.Size(),
		Modified: info.ModTime().UTC(),
	}
}
