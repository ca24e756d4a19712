package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingDirFallsBackToDefaults(t *testing.T) {
	lib := Load(filepath.Join(t.TempDir(), "does-not-exist"))

	defaults := Defaults()
	assert.Equal(t, defaults.Taxonomy, lib.Taxonomy)
	assert.Equal(t, defaults.Specific, lib.Specific)
	assert.Equal(t, defaults.Temporal, lib.Temporal)
}

func TestLoadPrefersFilesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	custom := "Custom specific template with {query} and {data}."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompt_specific.txt"), []byte(custom), 0644))

	lib := Load(dir)

	assert.Equal(t, custom, lib.Specific)
	// Files not present still fall back individually.
	assert.Equal(t, Defaults().Generic, lib.Generic)
}

func TestDefaultTemplatesCarryPlaceholders(t *testing.T) {
	lib := Defaults()

	for name, text := range map[string]string{
		"specific": lib.Specific,
		"generic":  lib.Generic,
	} {
		assert.True(t, strings.Contains(text, "{query}"), "template %s", name)
		assert.True(t, strings.Contains(text, "{data}"), "template %s", name)
	}

	assert.Contains(t, lib.Temporal, "{time_period}")
	assert.Contains(t, lib.Temporal, "{today_data}")
	assert.Contains(t, lib.LivingLab, "{query}")
}
