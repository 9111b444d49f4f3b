package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps command-line flags to config keys. Flags not listed here
// are not configuration.
var flagKeys = map[string]string{
	"driver":    "connection.driver",
	"dsn":       "connection.dsn",
	"path":      "connection.path",
	"host":      "connection.host",
	"port":      "connection.port",
	"database":  "connection.database",
	"username":  "connection.username",
	"password":  "connection.password",
	"env":       "environment",
	"log-level": "log_level",
	"output":    "output",
}

// Load builds the configuration. Precedence, highest first: flags,
// environment variables, .env, the selected environment's overrides, the
// config file, defaults. An empty cfgFile searches upward from the working
// directory for leapdb.yaml.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	base := koanf.New(".")
	if err := base.Load(confmap.Provider(map[string]any{
		"log_level": DefaultLogLevel,
		"output":    DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	root, cfgFile := locate(cfgFile)
	if cfgFile != "" {
		if err := base.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	overrides, err := loadOverrides(root, flags)
	if err != nil {
		return nil, err
	}

	environment := base.String("environment")
	if overrides.Exists("environment") {
		environment = overrides.String("environment")
	}
	if environment != "" {
		path := "environments." + environment + ".connection"
		if base.Exists(path) {
			if err := base.MergeAt(base.Cut(path), "connection"); err != nil {
				return nil, fmt.Errorf("failed to apply environment %q: %w", environment, err)
			}
		}
	}
	if err := base.Merge(overrides); err != nil {
		return nil, fmt.Errorf("failed to merge overrides: %w", err)
	}

	var cfg Config
	if err := base.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = root
	cfg.File = cfgFile
	expandConnectionEnvVars(&cfg)
	if cfg.Connection.Path != "" && cfg.Connection.Path != ":memory:" && !filepath.IsAbs(cfg.Connection.Path) {
		cfg.Connection.Path = filepath.Join(root, cfg.Connection.Path)
	}
	return &cfg, nil
}

// loadOverrides reads the layers that sit above the config file: .env,
// the process environment and explicitly set flags.
func loadOverrides(root string, flags *pflag.FlagSet) (*koanf.Koanf, error) {
	k := koanf.New(".")

	dotenv := filepath.Join(root, DotEnvFile)
	if _, err := os.Stat(dotenv); err == nil {
		vars, err := godotenv.Read(dotenv)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", dotenv, err)
		}
		values := make(map[string]any, len(vars))
		for name, v := range vars {
			if strings.HasPrefix(name, EnvPrefix) {
				values[envKey(name)] = v
			}
		}
		if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}
	return k, nil
}

// envKey transforms LEAPDB_CONNECTION__HOST into connection.host.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")
}

// locate returns the project root and the config file to load.
func locate(explicit string) (root, cfgFile string) {
	if explicit != "" {
		if abs, err := filepath.Abs(explicit); err == nil {
			return filepath.Dir(abs), abs
		}
		return filepath.Dir(explicit), explicit
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		cwd = "."
	}
	if dir := FindProjectRoot(cwd); dir != "" {
		return dir, findConfigFile(dir)
	}
	return cwd, ""
}

// FindProjectRoot walks up from startDir looking for leapdb.yaml or
// leapdb.yml. It returns "" if none is found.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if findConfigFile(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func findConfigFile(dir string) string {
	for _, name := range []string{FileName, FileNameAlt} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns. Unset variables are left as is.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

// expandConnectionEnvVars expands environment variables in credential fields.
func expandConnectionEnvVars(cfg *Config) {
	c := &cfg.Connection
	c.DSN = expandEnvVars(c.DSN)
	c.Host = expandEnvVars(c.Host)
	c.Database = expandEnvVars(c.Database)
	c.Username = expandEnvVars(c.Username)
	c.Password = expandEnvVars(c.Password)
}
