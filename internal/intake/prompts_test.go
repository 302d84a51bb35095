package intake

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPrompts_AllStagesSet(t *testing.T) {
	p := DefaultPrompts()
	assert.NotEmpty(t, p.Classify)
	assert.NotEmpty(t, p.Matter)
	assert.NotEmpty(t, p.Contact)
	assert.NotEmpty(t, p.Quality)
	assert.NotEmpty(t, p.Decide)
}

func TestLoadPrompts_EmptyPathReturnsDefaults(t *testing.T) {
	p, err := LoadPrompts("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompts(), p)
}

func TestLoadPrompts_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classify: custom classifier prompt\n"), 0o644))

	p, err := LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, "custom classifier prompt", p.Classify)
	assert.Equal(t, DefaultPrompts().Matter, p.Matter)
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
