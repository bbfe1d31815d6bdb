package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile stores the artifact in dir under its generated filename and
// returns the full path. The file is written to a temporary name and renamed
// into place, so a failure never leaves a truncated report behind.
func WriteFile(dir string, a *Artifact) (string, error) {
	if a == nil {
		return "", ErrMissingResult
	}

	target := filepath.Join(dir, a.Filename)

	tmp, err := os.CreateTemp(dir, "."+a.Filename+".*.tmp")
	if err != nil {
		return "", exportError(a.Format, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", exportError(a.Format, cause)
	}

	if _, err := tmp.Write(a.Data); err != nil {
		return cleanup(fmt.Errorf("failed to write %s: %w", a.Filename, err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("failed to flush %s: %w", a.Filename, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", exportError(a.Format, fmt.Errorf("failed to close %s: %w", a.Filename, err))
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return "", exportError(a.Format, fmt.Errorf("failed to move %s into place: %w", a.Filename, err))
	}

	return target, nil
}
