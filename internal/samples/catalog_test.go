package samples

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genarabia-ai/dialect-tts/internal/dialect"
)

const metadataFixture = `{
  "egyptian": [
    {"id": "sample1", "text": "مرحبا بك", "filename": "sample1.wav", "description": "Greeting"},
    {"id": "sample2", "text": "صباح الخير", "filename": "sample2.wav", "description": "Morning"}
  ],
  "ksa": [
    {"id": "sample1", "text": "أهلا وسهلا", "filename": "sample1.wav", "description": "Welcome"}
  ]
}`

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(metadataFixture), 0o644))

	c, err := Load(dir)
	require.NoError(t, err)
	return c
}

func TestLoad_MissingMetadata(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoad_MalformedMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("{not json"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestCatalog_ForDialect(t *testing.T) {
	c := newTestCatalog(t)

	egyptian := c.ForDialect(dialect.Egyptian)
	require.Len(t, egyptian, 2)
	assert.Equal(t, "مرحبا بك", egyptian[0].Text)

	// Dialects absent from the metadata have no samples.
	assert.Empty(t, c.ForDialect(dialect.Kuwaiti))
}

func TestCatalog_Find(t *testing.T) {
	c := newTestCatalog(t)

	s, err := c.Find(dialect.KSA, "sample1")
	require.NoError(t, err)
	assert.Equal(t, "أهلا وسهلا", s.Text)

	_, err = c.Find(dialect.KSA, "sample9")
	assert.ErrorIs(t, err, ErrSampleNotFound)

	// Sample ids are scoped per dialect.
	_, err = c.Find(dialect.Kuwaiti, "sample1")
	assert.ErrorIs(t, err, ErrSampleNotFound)
}

func TestCatalog_AudioPath(t *testing.T) {
	c := newTestCatalog(t)

	s, err := c.Find(dialect.Egyptian, "sample2")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.dir, "egyptian", "sample2.wav"), c.AudioPath(dialect.Egyptian, s))
}
