package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoExports is returned when a directory holds no chart export.
var ErrNoExports = errors.New("no chart export found")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds chart exports on disk. Relative directories are resolved
// against basePath.
type Discovery struct {
	basePath   string
	extensions []string
}

// NewDiscovery creates a new file discovery instance. With no extensions
// it looks for .csv and .xlsx files.
func NewDiscovery(basePath string, extensions ...string) *Discovery {
	if len(extensions) == 0 {
		extensions = []string{".csv", ".xlsx"}
	}
	for i, ext := range extensions {
		extensions[i] = strings.ToLower(ext)
	}
	return &Discovery{basePath: basePath, extensions: extensions}
}

// FindExports lists the exports in dir, oldest first.
func (d *Discovery) FindExports(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) && d.basePath != "" {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		// editors and Excel leave lock files like ~$chart.xlsx behind
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") || !d.matches(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

func (d *Discovery) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range d.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// GetLatestFile returns the most recently modified file from a list.
// Ties go to the later entry.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

// ResolveExport returns path unchanged when it names a file. When it names
// a directory the newest export inside it is returned instead.
func (d *Discovery) ResolveExport(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		// missing files are reported by whoever opens them
		return path, nil
	}

	exports, err := d.FindExports(path)
	if err != nil {
		return "", err
	}
	latest, ok := GetLatestFile(exports)
	if !ok {
		return "", fmt.Errorf("%w in %s", ErrNoExports, path)
	}
	return latest.Path, nil
}
