// Package config loads extracto configuration from files, environment
// variables and command-line flags, in that order of precedence
// (lowest to highest).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files
	// (without extension).
	ConfigFileName = "extracto"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "EXTRACTO"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader. It uses the global
// viper instance so cobra flag bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables and
// defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshalAndValidate()
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshalAndValidate()
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/extracto")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "extracto"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "extracto"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("ocr.language", defaults.OCR.Language)
	l.v.SetDefault("ocr.enhance", defaults.OCR.Enhance)

	l.v.SetDefault("pdf.dpi", defaults.PDF.DPI)
	l.v.SetDefault("pdf.pdftoppm_path", defaults.PDF.PdftoppmPath)

	l.v.SetDefault("batch.workers", defaults.Batch.Workers)
	l.v.SetDefault("batch.continue_on_error", defaults.Batch.ContinueOnError)
	l.v.SetDefault("batch.output_format", defaults.Batch.OutputFormat)
	l.v.SetDefault("batch.delimiter", defaults.Batch.Delimiter)

	l.v.SetDefault("rules.bank", defaults.Rules.Bank)
	l.v.SetDefault("rules.strict_dv", defaults.Rules.StrictDV)
	l.v.SetDefault("rules.default_exhorto", defaults.Rules.DefaultExhorto)
	l.v.SetDefault("rules.default_sucursal", defaults.Rules.DefaultSucursal)

	l.v.SetDefault("reference.file", defaults.Reference.File)

	l.v.SetDefault("trace.file", defaults.Trace.File)
	l.v.SetDefault("trace.fill_mode", defaults.Trace.FillMode)

	l.v.SetDefault("geocode.enabled", defaults.Geocode.Enabled)
	l.v.SetDefault("geocode.endpoint", defaults.Geocode.Endpoint)
	l.v.SetDefault("geocode.user_agent", defaults.Geocode.UserAgent)
	l.v.SetDefault("geocode.delay", defaults.Geocode.Delay)

	l.v.SetDefault("normalize.date_format", defaults.Normalize.DateFormat)
	l.v.SetDefault("normalize.thousand_sep", defaults.Normalize.ThousandSep)
	l.v.SetDefault("normalize.required_fields", defaults.Normalize.RequiredFields)
	l.v.SetDefault("normalize.reject_incomplete", defaults.Normalize.RejectIncomplete)
}

// GetResolvedConfig returns the current resolved configuration for
// debugging.
func (l *Loader) GetResolvedConfig() map[string]interface{} {
	return l.v.AllSettings()
}

// WriteConfigToFile writes the current configuration to a file.
func (l *Loader) WriteConfigToFile(filename string) error {
	return l.v.WriteConfigAs(filename)
}

// GenerateDefaultConfigFile generates a default configuration file.
func GenerateDefaultConfigFile(filename string) error {
	loader := NewLoader()
	loader.setDefaults()

	if filename == "" {
		filename = "extracto.yaml"
	}
	return loader.WriteConfigToFile(filename)
}

// GetConfigSearchPaths returns the paths where configuration files are
// searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
		paths = append(paths, filepath.Join(home, ".config", "extracto"))
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "extracto"))
	}

	paths = append(paths, "/etc/extracto")

	return paths
}
