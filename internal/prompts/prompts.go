package prompts

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/smartcity-agent/backend/pkg/logger"
)

// Library holds the reference texts and response templates, loaded once at
// startup and treated as immutable for the life of the process.
type Library struct {
	Taxonomy      string
	NodeDirectory string
	NamingGuide   string
	Specific      string
	Generic       string
	LivingLab     string
	Temporal      string
}

var files = []struct {
	name     string
	fallback string
	assign   func(*Library, string)
}{
	{"taxonomy.txt", defaultTaxonomy, func(l *Library, s string) { l.Taxonomy = s }},
	{"node_directory.txt", defaultNodeDirectory, func(l *Library, s string) { l.NodeDirectory = s }},
	{"naming_guide.txt", defaultNamingGuide, func(l *Library, s string) { l.NamingGuide = s }},
	{"prompt_specific.txt", defaultSpecific, func(l *Library, s string) { l.Specific = s }},
	{"prompt_generic.txt", defaultGeneric, func(l *Library, s string) { l.Generic = s }},
	{"prompt_living_lab.txt", defaultLivingLab, func(l *Library, s string) { l.LivingLab = s }},
	{"prompt_temporal.txt", defaultTemporal, func(l *Library, s string) { l.Temporal = s }},
}

// Load reads the prompt files from dir. A missing or unreadable file falls
// back to the built-in default for that slot.
func Load(dir string) *Library {
	lib := &Library{}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Prompt file not found, using built-in default",
				zap.String("file", path),
				zap.Error(err),
			)
			f.assign(lib, f.fallback)
			continue
		}
		f.assign(lib, string(content))
	}

	return lib
}

// Defaults returns a Library backed entirely by the built-in texts.
func Defaults() *Library {
	return &Library{
		Taxonomy:      defaultTaxonomy,
		NodeDirectory: defaultNodeDirectory,
		NamingGuide:   defaultNamingGuide,
		Specific:      defaultSpecific,
		Generic:       defaultGeneric,
		LivingLab:     defaultLivingLab,
		Temporal:      defaultTemporal,
	}
}
