package seed

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Built-in presets, overridable by a presets file.
var builtinPresets = map[string]Options{
	"minimal": {Users: 1, PostsPerUser: 2, PublishRatio: 0.5, MaxDays: 7, Admins: 1, SkipBcrypt: true},
	"demo":    DefaultOptions(),
	"busy":    {Users: 25, PostsPerUser: 12, PublishRatio: 0.6, ScheduleRatio: 0.15, MaxDays: 180, Admins: 2, SkipBcrypt: true},
}

type presetFile struct {
	Presets map[string]Options `yaml:"presets"`
}

// ParsePresets decodes a YAML document of the form
//
//	presets:
//	  name:
//	    users: 3
//	    posts_per_user: 5
func ParsePresets(r io.Reader) (map[string]Options, error) {
	var doc presetFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	out := make(map[string]Options, len(doc.Presets))
	for name, opts := range doc.Presets {
		if err := opts.validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		out[strings.ToLower(name)] = opts
	}
	return out, nil
}

// LoadPreset resolves name from the presets file at path (if any) and then
// the built-ins.
func LoadPreset(path, name string) (Options, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Options{}, fmt.Errorf("open presets file: %w", err)
		}
		defer f.Close()

		presets, err := ParsePresets(f)
		if err != nil {
			return Options{}, err
		}
		if opts, ok := presets[name]; ok {
			return opts, nil
		}
	}
	if opts, ok := builtinPresets[name]; ok {
		return opts, nil
	}
	return Options{}, fmt.Errorf("unknown preset %q (built-in: %s)", name, strings.Join(PresetNames(), ", "))
}

// PresetNames lists the built-in presets.
func PresetNames() []string {
	names := make([]string, 0, len(builtinPresets))
	for name := range builtinPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o Options) validate() error {
	switch {
	case o.Users < 0 || o.PostsPerUser < 0 || o.Admins < 0:
		return fmt.Errorf("counts must not be negative")
	case o.PublishRatio < 0 || o.ScheduleRatio < 0 || o.PublishRatio+o.ScheduleRatio > 1:
		return fmt.Errorf("publish_ratio and schedule_ratio must be within [0,1] and sum to at most 1")
	}
	return nil
}
