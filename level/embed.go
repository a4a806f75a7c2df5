package level

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed levels/*.yaml
var LevelsFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Dir is the on-disk directory checked before the embedded copies.
var Dir = "level"

// Load returns a level file, preferring the copy on disk so edits are picked
// up without rebuilding.
func Load(name string) ([]byte, error) {
	clean := cleanPath(name, "levels/")
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return LevelsFS.ReadFile(clean)
}

func LoadScript(name string) ([]byte, error) {
	clean := cleanPath(name, "scripts/")
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(diskPath(cleanPath(name, "levels/")))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// LevelDir and ScriptDir are the directories a Watcher should observe.
func LevelDir() string  { return filepath.Join(Dir, "levels") }
func ScriptDir() string { return filepath.Join(Dir, "scripts") }

func cleanPath(path, prefix string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, Dir+"/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, prefix); ok {
		s = after
	}
	if prefix == "levels/" && filepath.Ext(s) == "" {
		s += ".yaml"
	}
	return fmt.Sprintf("%s%s", prefix, s)
}

func diskPath(clean string) string {
	return filepath.Join(Dir, filepath.FromSlash(clean))
}
