package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/zebreus/wasmlet/internal/plugins"
)

var (
	configData Config
	v          *viper.Viper
)

// Config holds all configuration settings.
type Config struct {
	// Plugin configuration
	Plugin struct {
		Dir string
	}
	// Logging configuration
	Log struct {
		Level  string
		Format string
	}
}

// Initialize sets up the configuration system. An explicit cfgFile skips the
// default lookup paths.
func Initialize(cfgFile string) error {
	v = viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Set config name and paths
		v.SetConfigName("config")         // name of config file (without extension)
		v.SetConfigType("yaml")           // config file type
		v.AddConfigPath(".")              // optionally look for config in working directory
		v.AddConfigPath("$HOME/.wasmlet") // look for config in .wasmlet directory in home
		v.AddConfigPath("/etc/wasmlet/")  // path to look for the config file in
	}

	// Set default values
	setDefaults()

	// Environment variables
	v.SetEnvPrefix("WASMLET") // prefix for env vars
	v.AutomaticEnv()          // read in environment variables that match
	v.SetEnvKeyReplacer(      // replace dots with underscores in env vars
		strings.NewReplacer(".", "_"),
	)

	// Read in config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if we can't find a config file, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal config into struct
	if err := v.Unmarshal(&configData); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}

	// An empty WASMLET_PLUGIN_DIR means the default lookup directory, not
	// the working directory.
	if configData.Plugin.Dir == "" {
		configData.Plugin.Dir = plugins.DefaultPluginDir
	}

	return nil
}

// setDefaults sets default values for all configuration options.
func setDefaults() {
	// Plugin defaults
	v.SetDefault("plugin.dir", plugins.DefaultPluginDir)

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "human")
}

// Get returns the current configuration.
func Get() *Config {
	return &configData
}

// GetViper returns the viper instance.
func GetViper() *viper.Viper {
	return v
}
