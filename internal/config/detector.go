package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type rootConfig struct {
	Backend BackendConfig `yaml:"backend"`
}

// DetectBackendType determines which store backend the configuration
// selects, before the typed loaders run. The LEASELOCK_BACKEND_TYPE
// environment variable takes precedence over the file.
func DetectBackendType(configPath string) (string, error) {
	if envType := os.Getenv("LEASELOCK_BACKEND_TYPE"); envType != "" {
		return normalizeBackendType(envType), nil
	}

	fileInfo, err := os.Stat(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("configuration file not found at %s", configPath)
		}
		return "", err
	}

	configFile := configPath
	if fileInfo.IsDir() {
		candidates := []string{
			filepath.Join(configPath, "config.yaml"),
			filepath.Join(configPath, "config.yml"),
		}

		configFile = ""
		for _, candidate := range candidates {
			if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
				configFile = candidate
				break
			}
		}

		if configFile == "" {
			return "", fmt.Errorf("no config file found in directory %s", configPath)
		}
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return "", fmt.Errorf("failed to read config file: %w", err)
	}

	var config rootConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return "", fmt.Errorf("invalid configuration file: %w", err)
	}

	if config.Backend.Type == "" {
		return "", fmt.Errorf("backend type not specified in config")
	}

	return normalizeBackendType(config.Backend.Type), nil
}

// normalizeBackendType maps common aliases onto the registered
// constructor names.
func normalizeBackendType(backendType string) string {
	switch strings.ToLower(strings.TrimSpace(backendType)) {
	case "redis":
		return "redis"
	case "dynamodb", "dynamo":
		return "dynamodb"
	case "scylladb", "scylla", "cassandra":
		return "scylladb"
	default:
		return strings.ToLower(strings.TrimSpace(backendType))
	}
}
