package mods

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultManifestCacheSize bounds the number of cached manifests.
const DefaultManifestCacheSize = 512

// ErrEmptyManifest is returned for a manifest with no content.
var ErrEmptyManifest = errors.New("manifest.json is empty")

// Manifest is the parsed content of a mod's manifest.json.
type Manifest struct {
	ID          string
	Name        string
	Version     string
	Author      string
	Description string
	Type        string
	// Copy lists paths relative to the mod folder; a trailing "/" marks a directory.
	Copy []string
}

// ParseManifest decodes manifest data. A UTF-8 BOM and surrounding
// whitespace are ignored. Non-string scalar fields are stringified; a copy
// value that is not a list is treated as empty.
func ParseManifest(data []byte) (*Manifest, error) {
	data = trimBOM(data)
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, ErrEmptyManifest
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}

	m := &Manifest{
		ID:          str(raw["id"]),
		Name:        str(raw["name"]),
		Version:     str(raw["version"]),
		Author:      str(raw["author"]),
		Description: str(raw["description"]),
		Type:        strings.ToLower(str(raw["type"])),
	}
	if list, ok := raw["copy"].([]any); ok {
		for _, e := range list {
			if s := strings.TrimSpace(str(e)); s != "" {
				m.Copy = append(m.Copy, s)
			}
		}
	}
	return m, nil
}

// ReadManifest reads and parses the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

type manifestEntry struct {
	manifest *Manifest
	err      error
}

// ManifestCache caches parsed manifests keyed by path, size and modification time,
// so an edited manifest is re-read while unchanged ones are not.
type ManifestCache struct {
	mu     sync.Mutex
	cache  *lru.Cache[string, manifestEntry]
	hits   int
	misses int
}

// NewManifestCache creates a cache holding up to size manifests.
func NewManifestCache(size int) (*ManifestCache, error) {
	if size <= 0 {
		size = DefaultManifestCacheSize
	}
	cache, err := lru.New[string, manifestEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest cache: %w", err)
	}
	return &ManifestCache{cache: cache}, nil
}

// Read returns the manifest at path, parsing it only if it changed.
// Parse errors are cached too.
func (c *ManifestCache) Read(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())

	c.mu.Lock()
	if e, ok := c.cache.Get(key); ok {
		c.hits++
		c.mu.Unlock()
		return e.manifest, e.err
	}
	c.misses++
	c.mu.Unlock()

	m, err := ReadManifest(path)
	c.cache.Add(key, manifestEntry{manifest: m, err: err})
	return m, err
}

// Stats returns cache hit and miss counts.
func (c *ManifestCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached manifests.
func (c *ManifestCache) Len() int {
	return c.cache.Len()
}
