package utils

import (
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// DefaultSlotDir returns the save-slot directory used for a ROM when none is
// given: a "<name>.slots" directory next to the ROM file.
func DefaultSlotDir(romPath string) (string, error) {
	fullPath, parentDir, err := GetPathInfo(romPath)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(fullPath), filepath.Ext(fullPath))
	return filepath.Join(parentDir, base+".slots"), nil
}
