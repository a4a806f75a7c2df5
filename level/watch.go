package level

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Editors often write a file in several bursts; bursts closer than this
// collapse into one change.
const watchDebounce = 100 * time.Millisecond

// ChangeKind says what a changed file holds.
type ChangeKind int

const (
	LevelChanged ChangeKind = iota
	ScriptChanged
)

func (k ChangeKind) String() string {
	if k == ScriptChanged {
		return "script"
	}
	return "level"
}

// Change is one debounced edit to a level or script file. Name is the file
// name without its extension, the same name LoadSpec and LoadScript take.
type Change struct {
	Kind ChangeKind
	Name string
	Path string
}

// Watcher reports edits to level and script files so a running demo can
// reload them. Other files in the watched directories are ignored.
type Watcher struct {
	fs      *fsnotify.Watcher
	Changes chan Change
	Errors  chan error

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			_ = fs.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fs,
		Changes: make(chan Change, 16),
		Errors:  make(chan error, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher and closes both channels. It is safe to call more
// than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fs.Close()
		<-w.done
		close(w.Changes)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	seen := make(map[string]time.Time)
	for {
		select {
		case <-w.stop:
			return
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			// Drop errors nobody is reading; the next one will do.
			select {
			case w.Errors <- err:
			default:
			}
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			change, ok := classify(event)
			if !ok {
				continue
			}
			now := time.Now()
			if prev, ok := seen[change.Path]; ok && now.Sub(prev) < watchDebounce {
				continue
			}
			seen[change.Path] = now
			select {
			case w.Changes <- change:
			case <-w.stop:
				return
			}
		}
	}
}

func classify(event fsnotify.Event) (Change, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return Change{}, false
	}
	change := Change{Path: event.Name, Name: stem(event.Name)}
	switch {
	case IsLevelFile(event.Name):
		change.Kind = LevelChanged
	case IsScriptFile(event.Name):
		change.Kind = ScriptChanged
	default:
		return Change{}, false
	}
	return change, true
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func IsLevelFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func IsScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
