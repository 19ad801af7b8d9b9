// Package configutil reads json5 config files with an optional
// .local override next to them, so checked-in defaults and personal
// endpoints can coexist (config.json5 + config.local.json5).
package configutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localPath derives the override path: "dir/config.json5" becomes
// "dir/config.local.json5".
func localPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func readInto[T any](path string, out *T) (bool, error) {
	payload, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(payload) == 0 {
		return false, nil
	}
	return true, json5.Unmarshal(payload, out)
}

// ReadConfig reads name and, when present, merges the .local variant
// over it. os.ErrNotExist is returned when neither file exists so
// callers can fall back to built-in defaults.
func ReadConfig[T any](name string) (T, error) {
	var config T

	found, err := readInto(name, &config)
	if err != nil {
		return config, err
	}

	var override T
	foundLocal, err := readInto(localPath(name), &override)
	if err != nil {
		return config, err
	}
	if foundLocal {
		if err := mergo.Merge(&config, override, mergo.WithOverride); err != nil {
			return config, err
		}
		slog.Info("merged local config overrides", "path", localPath(name))
	}

	if !found && !foundLocal {
		return config, os.ErrNotExist
	}
	return config, nil
}

// ReadRecursively walks from the working directory up to the
// filesystem root looking for name. Lets every binary in the repo
// share one telemetry.json5 at the checkout root.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return zero, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
