package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// sections maps lower-cased section names to lower-cased keys and raw values.
type sections map[string]map[string]string

// fileKey names one required entry of the configuration file.
type fileKey struct {
	section string
	key     string
}

func (k fileKey) String() string {
	return k.section + "." + k.key
}

var (
	keyMinInterval  = fileKey{"intervals", "mininterval"}
	keyMaxInterval  = fileKey{"intervals", "maxinterval"}
	keyLines        = fileKey{"formatting", "lines"}
	keyLimitPerLine = fileKey{"formatting", "limit_per_line"}
)

func credentialKey(name string) fileKey {
	return fileKey{"credentials", strings.ToLower(name)}
}

func fromFile(path string) (*Config, error) {
	raw, err := readSections(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfiguration, path, err)
	}

	var problems []error
	str := func(k fileKey) string {
		sec, ok := raw[k.section]
		if !ok {
			problems = append(problems, fmt.Errorf("missing section [%s]", k.section))
			return ""
		}
		val, ok := sec[k.key]
		if !ok {
			problems = append(problems, fmt.Errorf("missing %s", k))
			return ""
		}
		return strings.TrimSpace(val)
	}
	num := func(k fileKey) int {
		val := str(k)
		if val == "" {
			return 0
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			problems = append(problems, fmt.Errorf("invalid %s: %w", k, err))
		}
		return n
	}

	cfg := &Config{
		Source: SourceFile,
		Path:   path,
		Intervals: Intervals{
			MinDays: num(keyMinInterval),
			MaxDays: num(keyMaxInterval),
		},
		Formatting: Formatting{
			Lines:        num(keyLines),
			LimitPerLine: num(keyLimitPerLine),
		},
		Credentials: Credentials{
			ConsumerKey:    str(credentialKey(EnvConsumerKey)),
			ConsumerSecret: str(credentialKey(EnvConsumerSecret)),
			AccessKey:      str(credentialKey(EnvAccessKey)),
			AccessSecret:   str(credentialKey(EnvAccessSecret)),
		},
	}

	// Missing sections are reported once per section.
	problems = dedupe(problems)
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfiguration, path, errors.Join(problems...))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readSections loads an INI or YAML file depending on its extension.
func readSections(path string) (sections, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readYAML(path)
	default:
		return readINI(path)
	}
}

func readINI(path string) (sections, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, fmt.Errorf("parse ini: %w", err)
	}

	out := make(sections)
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		keys := make(map[string]string, len(sec.Keys()))
		for _, k := range sec.Keys() {
			keys[k.Name()] = k.String()
		}
		out[sec.Name()] = keys
	}
	return out, nil
}

func readYAML(path string) (sections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]map[string]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	out := make(sections, len(doc))
	for name, keys := range doc {
		lowered := make(map[string]string, len(keys))
		for k, v := range keys {
			lowered[strings.ToLower(k)] = v
		}
		out[strings.ToLower(name)] = lowered
	}
	return out, nil
}

func dedupe(errs []error) []error {
	seen := make(map[string]bool, len(errs))
	out := errs[:0]
	for _, err := range errs {
		if seen[err.Error()] {
			continue
		}
		seen[err.Error()] = true
		out = append(out, err)
	}
	return out
}
