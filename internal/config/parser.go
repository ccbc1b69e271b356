package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser errors.
var (
	ErrInvalidYAML  = errors.New("invalid YAML format")
	ErrFileNotFound = errors.New("configuration file not found")
)

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadConfig loads configuration from a file path.
// It reads the file, substitutes environment variables, parses YAML,
// and applies defaults for missing values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	return ParseConfig(data)
}

// ParseConfig parses configuration from YAML data. Keys missing from data
// keep their default values; unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	data = substituteEnvVars(data)

	config := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return config, nil
}

// Marshal renders the configuration as YAML.
func Marshal(config *Config) ([]byte, error) {
	return yaml.Marshal(config)
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment variable values.
func substituteEnvVars(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		content := string(match[2 : len(match)-1])

		if idx := strings.Index(content, ":-"); idx != -1 {
			varName := content[:idx]
			defaultVal := content[idx+2:]
			if val := os.Getenv(varName); val != "" {
				return []byte(val)
			}
			return []byte(defaultVal)
		}

		return []byte(os.Getenv(content))
	})
}
