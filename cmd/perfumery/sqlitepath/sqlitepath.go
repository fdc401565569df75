// Package sqlitepath locates the chat transcript database.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scentshop/perfumery/pkg/dotdir"
)

// DefaultName is the transcript database file name inside .perfumery/.
const DefaultName = "history.db"

// ResolveSQLitePath returns the transcript database path. An explicit
// override wins. Otherwise an existing database under $XDG_DATA_HOME is
// reused, and failing that the database lives in the resolved .perfumery/
// directory.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		return override, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	path, err := dotdir.NewManager().Path(configDir, DefaultName)
	if err != nil {
		return "", fmt.Errorf("resolving chat history path: %w", err)
	}
	return path, nil
}

func sqliteCandidates() []string {
	var candidates []string
	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "perfumery", DefaultName))
	}
	return candidates
}
