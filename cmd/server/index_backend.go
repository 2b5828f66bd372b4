package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voxeledit.ai/internal/persistence/indexdb"
)

// openRuntimeIndex opens the read-model index selected by VC_INDEX_BACKEND.
// A nil index with a nil error means indexing is off.
func openRuntimeIndex(worldDir string, disableDB bool) (*indexdb.SQLiteIndex, error) {
	if disableDB {
		return nil, nil
	}
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("VC_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}
	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(indexPath(worldDir))
	default:
		return nil, fmt.Errorf("unsupported VC_INDEX_BACKEND=%q (want sqlite|none)", backend)
	}
}

func indexPath(worldDir string) string {
	return filepath.Join(worldDir, "index", "world.sqlite")
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
