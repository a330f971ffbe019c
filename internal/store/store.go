package store

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"taskboard/internal/clock"
)

const (
	dirName        = ".taskboard"
	sqliteFileName = "taskboard.sqlite"
)

// Store persists a Board under Dir.
type Store struct {
	Dir    string
	Logger *log.Logger
	// Clock supplies "today" for re-normalizing stored records; nil means
	// the system clock.
	Clock clock.Clock
}

// DiscoverDir walks up from start looking for an existing .taskboard
// directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir is the discovered .taskboard directory, or one in the current
// working directory when none exists yet.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, dirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.New(io.Discard)
}
