package template

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader loads and caches templates from a directory of YAML files.
type Loader struct {
	rootDir   string
	templates map[string]Template
	mu        sync.RWMutex
}

// NewLoader creates a loader and reads every template under rootDir.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir:   rootDir,
		templates: make(map[string]Template),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	slog.Info("templates loaded", "count", len(l.templates))
	return l, nil
}

// Get returns a template by ID.
func (l *Loader) Get(id string) (Template, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.templates[id]
	return t, ok
}

// All returns every loaded template sorted by name.
func (l *Loader) All() []Template {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Template, 0, len(l.templates))
	for _, t := range l.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Add registers a template at runtime, such as one accepted by an import.
func (l *Loader) Add(t Template) error {
	if t.ID == "" {
		return fmt.Errorf("template id is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.templates[t.ID]; exists {
		return fmt.Errorf("template already exists: %s", t.ID)
	}
	l.templates[t.ID] = t
	return nil
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return l.loadTemplate(path)
	})
}

func (l *Loader) loadTemplate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		slog.Warn("skipping invalid template YAML", "path", path, "error", err)
		return nil
	}

	if t.ID == "" {
		return nil // Not a template file
	}

	l.mu.Lock()
	l.templates[t.ID] = t
	l.mu.Unlock()

	return nil
}
