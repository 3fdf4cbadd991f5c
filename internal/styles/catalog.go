// Package styles serves the reference hairstyle catalog from a directory of
// style_* images plus an optional metadata.json.
package styles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
)

const (
	idPrefix        = "style_"
	metadataFile    = "metadata.json"
	defaultCategory = "unknown"
	// ImageFolder is the /images/{type} segment styles are served under.
	ImageFolder = "styles"
)

var imageExts = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}}

type metadata struct {
	Name     string   `json:"name"`
	Tags     []string `json:"tags"`
	Gender   string   `json:"gender"`
	Category string   `json:"category"`
}

// Catalog indexes a style directory. It is safe for concurrent use.
type Catalog struct {
	dir    string
	logger *infra.Logger

	mu     sync.RWMutex
	styles []domain.Style
	files  map[string]string
}

// NewCatalog creates the directory if needed and performs an initial scan.
func NewCatalog(dir string, logger *infra.Logger) (*Catalog, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("styles: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("styles: ensure directory: %w", err)
	}
	c := &Catalog{dir: dir, logger: infra.OrNop(logger), files: map[string]string{}}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir returns the scanned directory.
func (c *Catalog) Dir() string { return c.dir }

// Reload rescans the directory and metadata file.
func (c *Catalog) Reload() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("styles: read dir: %w", err)
	}
	meta, err := c.readMetadata()
	if err != nil {
		// A broken metadata file degrades to defaults rather than hiding styles.
		c.logger.Warn().Err(err).Str("dir", c.dir).Msg("style metadata unreadable, using defaults")
		meta = map[string]metadata{}
	}

	files := make(map[string]string)
	var list []domain.Style
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := imageExts[ext]; !ok {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if !strings.HasPrefix(id, idPrefix) {
			continue
		}
		if _, dup := files[id]; dup {
			continue
		}
		files[id] = name
		list = append(list, buildStyle(id, name, meta[id]))
	}
	sort.SliceStable(list, func(i, j int) bool { return lessID(list[i].ID, list[j].ID) })

	c.mu.Lock()
	c.styles = list
	c.files = files
	c.mu.Unlock()
	c.logger.Debug().Int("count", len(list)).Str("dir", c.dir).Msg("style catalog loaded")
	return nil
}

func buildStyle(id, file string, m metadata) domain.Style {
	s := domain.Style{
		ID:        id,
		Name:      strings.TrimSpace(m.Name),
		ImagePath: ImageFolder + "/" + file,
		Exists:    true,
		Tags:      m.Tags,
		Gender:    domain.ParseGender(m.Gender),
		Category:  strings.TrimSpace(m.Category),
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if s.Category == "" {
		s.Category = defaultCategory
	}
	if s.Name == "" {
		s.Name = s.DisplayName()
	}
	return s
}

func (c *Catalog) readMetadata() (map[string]metadata, error) {
	raw, err := os.ReadFile(filepath.Join(c.dir, metadataFile))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]metadata{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := map[string]metadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("styles: parse %s: %w", metadataFile, err)
	}
	return out, nil
}

// List returns the catalog in natural id order (style_2 before style_10).
func (c *Catalog) List() []domain.Style {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Style, len(c.styles))
	copy(out, c.styles)
	return out
}

// Get returns one style.
func (c *Catalog) Get(id string) (domain.Style, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.styles {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Style{}, fmt.Errorf("%w: %s", domain.ErrStyleNotFound, id)
}

// ReadImage loads the reference image bytes for id.
func (c *Catalog) ReadImage(id string) (domain.RawBinary, error) {
	c.mu.RLock()
	file, ok := c.files[id]
	c.mu.RUnlock()
	if !ok {
		return domain.RawBinary{}, fmt.Errorf("%w: %s", domain.ErrStyleNotFound, id)
	}
	data, err := os.ReadFile(filepath.Join(c.dir, file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.RawBinary{}, fmt.Errorf("%w: %s image missing", domain.ErrStyleNotFound, id)
		}
		return domain.RawBinary{}, fmt.Errorf("styles: read %s: %w", file, err)
	}
	mime := "image/png"
	if ext := strings.ToLower(filepath.Ext(file)); ext == ".jpg" || ext == ".jpeg" {
		mime = "image/jpeg"
	}
	return domain.RawBinary{Data: data, MIMEType: mime}, nil
}

// FilePath resolves a served filename (e.g. "style_1.jpg") inside the
// directory, refusing anything that is not a plain file name.
func (c *Catalog) FilePath(filename string) (string, bool) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", false
	}
	return filepath.Join(c.dir, filename), true
}

// lessID orders style_N ids numerically, falling back to lexical order.
func lessID(a, b string) bool {
	na, errA := strconv.Atoi(strings.TrimPrefix(a, idPrefix))
	nb, errB := strconv.Atoi(strings.TrimPrefix(b, idPrefix))
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
