// Package config assembles the process configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// ARCHITECT_* environment variables. The merged map is decoded with
// mapstructure so that environment strings such as "30s" or "true" land in
// typed fields.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARCHITECT_"

// Backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendLog    = "log"
	BackendAllow  = "allow_all"
)

// Config is the full process configuration.
type Config struct {
	CatalogDir string `mapstructure:"catalog_dir" yaml:"catalog_dir"`

	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Session struct {
		Backend string        `mapstructure:"backend" yaml:"backend"`
		Dir     string        `mapstructure:"dir" yaml:"dir"`
		TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
		Lock    bool          `mapstructure:"lock" yaml:"lock"`
		LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`

		// EncryptionKey is a base64 AES-256 key. When set, selections are sealed at rest.
		EncryptionKey string   `mapstructure:"encryption_key" yaml:"encryption_key"`
		FallbackKeys  []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
	} `mapstructure:"session" yaml:"session"`

	History struct {
		Backend string `mapstructure:"backend" yaml:"backend"`
		Path    string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"history" yaml:"history"`

	Access struct {
		Backend   string `mapstructure:"backend" yaml:"backend"`
		Whitelist string `mapstructure:"whitelist" yaml:"whitelist"`
	} `mapstructure:"access" yaml:"access"`

	Broadcast struct {
		Notifier    string `mapstructure:"notifier" yaml:"notifier"`
		Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
	} `mapstructure:"broadcast" yaml:"broadcast"`

	Redis struct {
		Addr     string `mapstructure:"addr" yaml:"addr"`
		Password string `mapstructure:"password" yaml:"password"`
		DB       int    `mapstructure:"db" yaml:"db"`
		Prefix   string `mapstructure:"prefix" yaml:"prefix"`
	} `mapstructure:"redis" yaml:"redis"`

	HTTP struct {
		Addr            string        `mapstructure:"addr" yaml:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	} `mapstructure:"http" yaml:"http"`

	// IgnoredEnv lists ARCHITECT_* variables that matched no setting.
	IgnoredEnv []string `mapstructure:"-" yaml:"-"`
}

// defaults returns the built-in layer.
func defaults() map[string]any {
	return map[string]any{
		"catalog_dir": "data",
		"log": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"session": map[string]any{
			"backend":  BackendMemory,
			"dir":      ".architect/sessions",
			"ttl":      "0s",
			"lock":     false,
			"lock_ttl": "30s",

			"encryption_key": "",
			"fallback_keys":  []any{},
		},
		"history": map[string]any{
			"backend": BackendSQLite,
			"path":    "prompts.db",
		},
		"access": map[string]any{
			"backend":   BackendFile,
			"whitelist": "access/whitelist.json",
		},
		"broadcast": map[string]any{
			"notifier":    BackendLog,
			"concurrency": 8,
		},
		"redis": map[string]any{
			"addr":     "localhost:6379",
			"password": "",
			"db":       0,
			"prefix":   "architect:",
		},
		"http": map[string]any{
			"addr":             ":8080",
			"shutdown_timeout": "5s",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the process environment.
func Load(path string) (*Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (*Config, error) {
	tree := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		merge(tree, file)
	}

	ignored := applyEnv(tree, environ)

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			durationFromNumber,
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(tree); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.IgnoredEnv = ignored
	return &cfg, nil
}

// durationFromNumber reads bare YAML numbers as seconds.
func durationFromNumber(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	return data, nil
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// applyEnv maps ARCHITECT_SESSION_LOCK_TTL onto session.lock_ttl. The first
// segment that names a section selects it; the rest is the key. Variables
// that name no known setting are skipped and returned, so that an unrelated
// ARCHITECT_* variable never stops the process. Unknown keys in the YAML
// file are still rejected.
func applyEnv(tree map[string]any, environ []string) []string {
	known := defaults()
	var ignored []string
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))

		if section, rest, found := strings.Cut(key, "_"); found {
			if sub, ok := known[section].(map[string]any); ok {
				if _, ok := sub[rest]; ok {
					dst, isMap := tree[section].(map[string]any)
					if !isMap {
						dst = map[string]any{}
						tree[section] = dst
					}
					dst[rest] = value
					continue
				}
			}
		}
		if v, ok := known[key]; ok {
			if _, isSection := v.(map[string]any); !isSection {
				tree[key] = value
				continue
			}
		}
		ignored = append(ignored, name)
	}
	sort.Strings(ignored)
	return ignored
}

// Validate rejects unknown backends and settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	check := func(field, value string, allowed ...string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: unknown backend %q (want one of %s)", field, value, strings.Join(allowed, ", ")))
	}

	check("session.backend", c.Session.Backend, BackendMemory, BackendFile, BackendRedis)
	check("history.backend", c.History.Backend, BackendSQLite, BackendRedis, BackendMemory)
	check("access.backend", c.Access.Backend, BackendFile, BackendAllow)
	check("broadcast.notifier", c.Broadcast.Notifier, BackendLog, BackendRedis)

	if c.CatalogDir == "" {
		errs = append(errs, errors.New("catalog_dir is required"))
	}
	if c.Session.Lock && c.Session.Backend != BackendRedis {
		errs = append(errs, errors.New("session.lock requires the redis session backend"))
	}
	if c.Session.TTL < 0 {
		errs = append(errs, errors.New("session.ttl cannot be negative"))
	}
	if len(c.Session.FallbackKeys) > 0 && c.Session.EncryptionKey == "" {
		errs = append(errs, errors.New("session.fallback_keys requires session.encryption_key"))
	}
	if c.Broadcast.Concurrency < 1 {
		errs = append(errs, errors.New("broadcast.concurrency must be at least 1"))
	}
	return errors.Join(errs...)
}

// UsesRedis reports whether any component needs a redis client.
func (c *Config) UsesRedis() bool {
	return c.Session.Backend == BackendRedis ||
		c.History.Backend == BackendRedis ||
		c.Broadcast.Notifier == BackendRedis
}
