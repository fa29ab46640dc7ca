package scene

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DiskRoot is where hosts look for editable scenes and scripts before falling back to
// the embedded copies. Paths are relative to the working directory.
var DiskRoot = "scene"

//go:embed scenes/*.yaml
var ScenesFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Load returns the scene file from disk when present, otherwise the embedded copy.
func Load(name string) ([]byte, error) {
	clean := cleanScenePath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return ScenesFS.ReadFile(clean)
}

func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(diskPath(cleanScenePath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// List returns the embedded scene names in lexical order.
func List() []string {
	matches, err := fs.Glob(ScenesFS, "scenes/*.yaml")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimPrefix(m, "scenes/"))
	}
	sort.Strings(names)
	return names
}

func cleanScenePath(path string) string {
	return cleanPath(path, "scenes", ".yaml")
}

func cleanScriptPath(path string) string {
	return cleanPath(path, "scripts", ".tengo")
}

func cleanPath(path, dir, ext string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	s = strings.TrimPrefix(s, DiskRoot+"/")
	s = strings.TrimPrefix(s, dir+"/")
	if filepath.Ext(s) == "" {
		s += ext
	}
	return fmt.Sprintf("%s/%s", dir, s)
}

func diskPath(clean string) string {
	return filepath.Join(DiskRoot, filepath.FromSlash(clean))
}
