package preprocess

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var presetFS embed.FS

// presetDef is the on-disk form of one preset fragment.
type presetDef struct {
	Description string `yaml:"description"`
	Body        string `yaml:"body"`
}

// registry maps preset names to replacement notation fragments. It is built
// once at process start from the embedded files and never mutated afterwards;
// the preset name is the file base name.
var registry = loadPresets()

func loadPresets() map[string]string {
	reg := make(map[string]string)
	fs.WalkDir(presetFS, "presets", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(presetFS, p)
		if err != nil {
			return nil
		}
		var def presetDef
		if yaml.Unmarshal(data, &def) != nil || def.Body == "" {
			return nil
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		reg[name] = strings.TrimRight(def.Body, "\n")
		return nil
	})
	return reg
}

// Preset returns the registered fragment for name, if any.
func Preset(name string) (string, bool) {
	fragment, ok := registry[name]
	return fragment, ok
}

// PresetNames returns the names of all registered presets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
