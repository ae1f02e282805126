package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// LoadAppConfig reads a YAML config file. Defaults are not applied; call Validate.
func LoadAppConfig(path string) (AppConfig, error) {
	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: read config '%s': %w", utils.ErrFilesystem, path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse YAML config '%s': %w", utils.ErrParsing, path, err)
	}
	return cfg, nil
}
