package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var OctorestHomeDir = func() string {
	dir, err := homedir.Dir()
	if err != nil {
		log.Fatalf("couldn't get user home directory: %s", err)
	}
	return filepath.Join(dir, ".octorest")
}()

var DefaultConfigPath = filepath.Join(OctorestHomeDir, "octorest.yml")

type DatabaseConfig struct {
	Name   string                 `yaml:"name"`
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}

type Config struct {
	Databases []DatabaseConfig `yaml:"databases"`
}

func (config *Config) GetDatabaseConfig(name string) (DatabaseConfig, error) {
	for i := range config.Databases {
		if config.Databases[i].Name == name {
			return config.Databases[i], nil
		}
	}

	return DatabaseConfig{}, errors.Wrapf(ErrNotFound, "database %s", name)
}

// Read reads the configuration file at the given path.
// A missing file results in an empty configuration.
func Read(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	var config Config

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}

	seen := make(map[string]bool)
	for i := range config.Databases {
		if config.Databases[i].Name == "" {
			return nil, errors.Errorf("database with index %d has no name", i)
		}
		if seen[config.Databases[i].Name] {
			return nil, errors.Errorf("duplicate database name: %s", config.Databases[i].Name)
		}
		seen[config.Databases[i].Name] = true
		if config.Databases[i].Config == nil {
			config.Databases[i].Config = map[string]interface{}{}
		}
		cleanupMaps(config.Databases[i].Config)
	}

	return &config, nil
}

// The yaml decoder creates maps of type map[interface{}]interface{} for non-string keys.
// cleanupMaps will change them to map[string]interface{}.
func cleanupMaps(config map[string]interface{}) {
	for k, v := range config {
		config[k] = cleanupMapsRecursive(v)
	}
}

func cleanupMapsRecursive(config interface{}) interface{} {
	switch config := config.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{})
		for k, v := range config {
			out[fmt.Sprintf("%v", k)] = cleanupMapsRecursive(v)
		}
		return out
	case map[string]interface{}:
		for k, v := range config {
			config[k] = cleanupMapsRecursive(v)
		}
	case []interface{}:
		for i := range config {
			config[i] = cleanupMapsRecursive(config[i])
		}
	}

	return config
}
