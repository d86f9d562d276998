package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ScanDir finds debt files directly under dir, or returns dir itself when
// it is a file. Hidden files are skipped.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		format, err := DetectFormat(dir)
		if err != nil {
			return nil, err
		}
		return []DiscoveredFile{{Path: dir, Format: format}}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []DiscoveredFile
	for _, e := range entries {
		if e.IsDir() || e.Type()&fs.ModeSymlink != 0 || e.Name()[0] == '.' {
			continue
		}
		format, err := DetectFormat(e.Name())
		if err != nil {
			continue
		}
		files = append(files, DiscoveredFile{Path: filepath.Join(dir, e.Name()), Format: format})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
