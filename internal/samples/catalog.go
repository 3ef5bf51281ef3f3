package samples

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/genarabia-ai/dialect-tts/internal/dialect"
)

// Error definitions for the samples package.
var (
	ErrSampleNotFound = errors.New("sample not found")
)

// Sample describes one training sample in the catalog.
type Sample struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

// Catalog is the read-only dialect-to-samples metadata used for
// comparison-style generation. The core never mutates it.
type Catalog struct {
	dir       string
	byDialect map[string][]Sample
}

// Load reads metadata.json from the samples directory.
func Load(dir string) (*Catalog, error) {
	path := filepath.Join(dir, "metadata.json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read samples metadata: %w", err)
	}

	byDialect := make(map[string][]Sample)
	if err := json.Unmarshal(data, &byDialect); err != nil {
		return nil, fmt.Errorf("decode samples metadata: %w", err)
	}

	return &Catalog{dir: dir, byDialect: byDialect}, nil
}

// All returns the full dialect-to-samples mapping.
func (c *Catalog) All() map[string][]Sample {
	return c.byDialect
}

// ForDialect returns the samples for one dialect.
func (c *Catalog) ForDialect(d dialect.Dialect) []Sample {
	return c.byDialect[d.String()]
}

// Find returns the sample with the given id for the dialect.
func (c *Catalog) Find(d dialect.Dialect, id string) (*Sample, error) {
	for _, s := range c.byDialect[d.String()] {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrSampleNotFound, d, id)
}

// AudioPath returns the on-disk path of a sample's recording.
func (c *Catalog) AudioPath(d dialect.Dialect, s *Sample) string {
	return filepath.Join(c.dir, d.String(), s.Filename)
}
