package history

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// DefaultFile is the history file used when HISTFILE and configuration are
// both unset.
const DefaultFile = "~/.bash_history"

// ExpandPath expands a leading "~" to the user's home directory and returns
// an absolute path. An empty path resolves to DefaultFile.
func ExpandPath(path string) (string, error) {
	if path == "" {
		path = DefaultFile
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand history path %q: %w", path, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve history path %q: %w", path, err)
	}
	return abs, nil
}
