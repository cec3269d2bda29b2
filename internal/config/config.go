// Package config loads the database connection mapping from a JSON or YAML file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

// ErrConfigNotFound is returned when the config file does not exist.
// It wraps latlong.ErrInvalidConfig, so both errors.Is checks succeed.
var ErrConfigNotFound = fmt.Errorf("config file not found: %w", latlong.ErrInvalidConfig)

// envRef matches a value that is entirely an environment reference, e.g. "${DB_PASSWORD}".
var envRef = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// Load reads the configuration file at path and returns its database mapping.
// Relative paths resolve against the current working directory. Files with a
// .yaml or .yml extension are decoded as YAML, everything else as JSON.
//
// A missing or malformed file, an empty document, or a document without a
// "database" mapping yields an error wrapping latlong.ErrInvalidConfig.
// A missing or falsy autocommit entry is set to true.
func Load(path string) (latlong.DatabaseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrConfigNotFound)
		}
		return nil, fmt.Errorf("read %s: %v: %w", path, err, latlong.ErrInvalidConfig)
	}

	doc, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, latlong.ErrInvalidConfig)
	}

	cfg, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FromDocument extracts the database mapping from a decoded configuration document.
// The returned mapping is a copy; doc is not modified.
func FromDocument(doc any) (latlong.DatabaseConfig, error) {
	top, ok := doc.(map[string]any)
	if !ok || len(top) == 0 {
		return nil, fmt.Errorf("empty configuration document: %w", latlong.ErrInvalidConfig)
	}

	raw, ok := top[latlong.ConfigDatabaseKey]
	if !ok {
		return nil, fmt.Errorf("missing %q key: %w", latlong.ConfigDatabaseKey, latlong.ErrInvalidConfig)
	}

	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q must be an object, got %T: %w", latlong.ConfigDatabaseKey, raw, latlong.ErrInvalidConfig)
	}

	cfg := make(latlong.DatabaseConfig, len(section)+1)
	for k, v := range section {
		cfg[k] = expandEnv(v)
	}

	if latlong.IsFalsy(cfg[latlong.ConfigKeyAutocommit]) {
		cfg[latlong.ConfigKeyAutocommit] = true
	}

	return cfg, nil
}

func decode(path string, data []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return doc, nil
}

func expandEnv(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	m := envRef.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return os.Getenv(m[1])
}
