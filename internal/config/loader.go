package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".emgscope.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/emgscope"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes every environment override, e.g. EMGSCOPE_LINK_ADDRESS.
	EnvPrefix = "EMGSCOPE"
)

// envKeys are the settings that can be overridden from the environment.
var envKeys = []string{
	"link.address",
	"link.baud",
	"link.read_timeout",
	"link.replay_interval",
	"link.replay_loop",
	"buffer.capacity",
	"render.interval",
	"protocol.preset",
	"protocol.variant",
	"protocol.separator",
	"classifier.threshold",
	"classifier.fallback",
	"metrics.addr",
}

// Load reads config from the specified path, with environment overrides applied.
func Load(path string) (*Config, error) {
	loadDotEnv(filepath.Dir(path))

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'emgscope init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .emgscope.yaml in current directory
// 3. .emgscope.yaml in parent directories (stops at git root or home)
// 4. ~/.config/emgscope/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			// Don't go above home directory
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		if isGitRoot(dir) {
			break
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults (still
// subject to environment overrides) if no file exists.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		loadDotEnv("")
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// loadDotEnv pulls a .env file from the config directory and the working
// directory into the process environment. Existing variables win.
func loadDotEnv(dir string) {
	candidates := []string{".env"}
	if dir != "" && dir != "." {
		candidates = append([]string{filepath.Join(dir, ".env")}, candidates...)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := baseConfig()

	setDefaults(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	cfg.Link.Address = expandAddress(cfg.Link.Address)

	// ApplyPreset reads a zero threshold as unset. An explicit 0 from the
	// file or the environment has to survive it.
	thresholdSet := v.IsSet("classifier.threshold")
	threshold := cfg.Classifier.Threshold
	custom := cfg.Protocol.IsCustom()

	if err := cfg.ApplyPreset(); err != nil {
		return nil, err
	}

	if thresholdSet {
		cfg.Classifier.Threshold = threshold
	} else if custom && len(cfg.Classifier.Rules) > 0 {
		return nil, errors.New(errors.ErrConfig,
			"classifier.rules are listed without a classifier.threshold",
			"Add 'threshold:' under 'classifier' in "+path+", e.g. 0.6")
	}

	return cfg, nil
}

// setDefaults registers defaults with viper so that partial files and
// environment overrides merge on top of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", CurrentConfigVersion)
	v.SetDefault("link.baud", DefaultBaud)
	v.SetDefault("link.read_timeout", DefaultReadTimeout.String())
	v.SetDefault("link.replay_interval", DefaultReplayInterval.String())
	v.SetDefault("link.replay_loop", false)
	v.SetDefault("buffer.capacity", DefaultCapacity)
	v.SetDefault("render.interval", DefaultRenderInterval.String())
	v.SetDefault("protocol.preset", DefaultPreset)
}

// baseConfig is DefaultConfig without a preset applied, so a file that picks a
// different preset doesn't inherit the default preset's channels.
func baseConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Link: LinkConfig{
			Baud:           DefaultBaud,
			ReadTimeout:    DefaultReadTimeout,
			ReplayInterval: DefaultReplayInterval,
		},
		Buffer: BufferConfig{Capacity: DefaultCapacity},
		Render: RenderConfig{Interval: DefaultRenderInterval},
	}
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
