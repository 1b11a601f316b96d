package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome      = "TRIPPLANNER_HOME" // override for tests
	dirName      = ".tripplanner"     // default under $HOME
	dbFilename   = "state.db"
	jsonFilename = "state.json"
)

// DataDir returns the directory where local state is stored (~/.tripplanner).
// It creates the directory with 0700 permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath returns the state file path for backend inside DataDir.
func DefaultPath(backend string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if backend == BackendFile {
		return filepath.Join(dir, jsonFilename), nil
	}
	return filepath.Join(dir, dbFilename), nil
}
