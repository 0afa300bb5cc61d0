package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jo-hoe/cnpdb/internal/backend/alignment"
	"github.com/jo-hoe/cnpdb/internal/backend/cache"
	"github.com/jo-hoe/cnpdb/internal/backend/preprocess"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file configuration
const (
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvReferencePath = "CNPDB_REFERENCE_PATH"
)

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

// Reference locates the curated spreadsheet and its structure/imaging assets
type Reference struct {
	Path      string `yaml:"path"`
	Sheet     string `yaml:"sheet"`
	AssetsDir string `yaml:"assetsDir"`
}

// Search holds the default alignment settings and scan tuning
type Search struct {
	alignment.Params `yaml:",inline"`
	Workers          int `yaml:"workers"`
	MaskMinRun       int `yaml:"maskMinRun"`
}

type Charts struct {
	Width int `yaml:"width"`
	Limit int `yaml:"limit"`
}

type ServiceConfig struct {
	Port      int                        `yaml:"port"`
	Database  Database                   `yaml:"database"`
	Cache     cache.Config               `yaml:"cache"`
	Reference Reference                  `yaml:"reference"`
	Search    Search                     `yaml:"search"`
	Commands  []preprocess.CommandConfig `yaml:"commands"`
	Charts    Charts                     `yaml:"charts"`
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML over the search defaults so omitted keys keep them and explicit zeros stay
	config := ServiceConfig{Search: Search{Params: alignment.DefaultParams()}}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	config.applyEnvironment()
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return &config, nil
}

func (config *ServiceConfig) applyEnvironment() {
	if password := os.Getenv(EnvRedisPassword); password != "" {
		config.Cache.Password = password
	}
	if path := os.Getenv(EnvReferencePath); path != "" {
		config.Reference.Path = path
	}
}

// ApplyDefaults fills every unset field
func (config *ServiceConfig) ApplyDefaults() {
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Database.Type == "" {
		config.Database.Type = "sqlite"
	}
	if config.Database.ConnectionString == "" {
		config.Database.ConnectionString = ":memory:"
	}
	if config.Cache.Type == "" {
		config.Cache.Type = cache.TypeMemory
	}
	if config.Cache.TTL == 0 {
		config.Cache.TTL = time.Hour
	}
	if config.Cache.Prefix == "" {
		config.Cache.Prefix = "cnpdb:"
	}
	config.Search.Params = config.Search.Params.WithDefaults()
	if config.Search.MaskMinRun == 0 {
		config.Search.MaskMinRun = 4
	}
	if len(config.Commands) == 0 {
		config.Commands = preprocess.DefaultCommands
	}
	if config.Charts.Width == 0 {
		config.Charts.Width = 800
	}
	if config.Charts.Limit == 0 {
		config.Charts.Limit = 15
	}
}

// Validate reports every configuration problem at once
func (config *ServiceConfig) Validate() error {
	var err error
	if config.Port < 1 || config.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("port %d out of range", config.Port))
	}
	if config.Reference.Path == "" {
		err = multierr.Append(err, errors.New("reference.path is required"))
	}
	if config.Cache.Type == cache.TypeRedis && config.Cache.Address == "" {
		err = multierr.Append(err, errors.New("cache.address is required for redis"))
	}
	if config.Search.MaskMinRun < 2 {
		err = multierr.Append(err, fmt.Errorf("search.maskMinRun %d must be at least 2", config.Search.MaskMinRun))
	}
	if config.Search.Workers < 0 {
		err = multierr.Append(err, errors.New("search.workers must not be negative"))
	}
	if config.Charts.Width < 100 {
		err = multierr.Append(err, fmt.Errorf("charts.width %d must be at least 100", config.Charts.Width))
	}
	err = multierr.Append(err, config.Search.Params.Validate())
	if cerr := validateCommands(config.Commands); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid command configuration: %w", cerr))
	}
	return err
}

// validateCommands ensures all command configurations have required fields
func validateCommands(commands []preprocess.CommandConfig) error {
	seenNames := make(map[string]bool)

	for i, cmd := range commands {
		// Validate name is not empty
		if cmd.Name == "" {
			return fmt.Errorf("command at index %d has empty name", i)
		}

		if !preprocess.DefaultRegistry.IsRegistered(cmd.Name) {
			return fmt.Errorf("unknown command %s at index %d, available: %s",
				cmd.Name, i, strings.Join(preprocess.DefaultRegistry.GetRegisteredNames(), ", "))
		}

		// Validate name is unique
		if seenNames[cmd.Name] {
			return fmt.Errorf("duplicate command name: %s", cmd.Name)
		}
		seenNames[cmd.Name] = true
	}

	return nil
}
