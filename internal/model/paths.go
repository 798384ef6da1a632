package model

import (
	"os"
	"path/filepath"
)

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "qextract-cache")
	}
	return filepath.Join(home, ".qextract", "cache")
}
