// Package config loads cmangraph settings from flags, environment and an
// optional config file through viper.
package config

import (
	"fmt"
	"strings"

	"github.com/kylerisse/cmangraph/pkg/datasource"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CMANGRAPH_RRD_DIR.
const EnvPrefix = "cmangraph"

// Viper keys.
const (
	KeyListenPort   = "listen_port"
	KeyRRDDir       = "rrd_dir"
	KeyGraphDir     = "graph_dir"
	KeyStorage      = "storage"
	KeyCheckCommand = "check_command"
	KeyLogLevel     = "log_level"
	KeyRateLimit    = "rate_limit"
	KeyRateBurst    = "rate_burst"
	KeyWidth        = "width"
	KeyHeight       = "height"
	KeyTimeLengths  = "time_lengths"
)

// Config holds the resolved settings.
type Config struct {
	ListenPort   string
	RRDDir       string
	GraphDir     string
	Storage      datasource.StorageType
	CheckCommand string
	LogLevel     logrus.Level
	RateLimit    float64 // requests per second
	RateBurst    int
	Width        int
	Height       int
	TimeLengths  []string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyListenPort, "1982")
	v.SetDefault(KeyRRDDir, "/var/lib/pnp4nagios/perfdata")
	v.SetDefault(KeyGraphDir, ".")
	v.SetDefault(KeyStorage, string(datasource.StorageSingle))
	v.SetDefault(KeyCheckCommand, "check_oracle_cman.pl")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyRateLimit, 20.0)
	v.SetDefault(KeyRateBurst, 40)
	v.SetDefault(KeyWidth, 800)
	v.SetDefault(KeyHeight, 200)
	v.SetDefault(KeyTimeLengths, []string{"4h", "25h", "1w", "31d", "1y"})
}

// BindEnv makes v read CMANGRAPH_* environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load resolves and validates the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	storage, err := datasource.ParseStorageType(v.GetString(KeyStorage))
	if err != nil {
		return Config{}, err
	}

	level, err := logrus.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}

	cfg := Config{
		ListenPort:   v.GetString(KeyListenPort),
		RRDDir:       v.GetString(KeyRRDDir),
		GraphDir:     v.GetString(KeyGraphDir),
		Storage:      storage,
		CheckCommand: v.GetString(KeyCheckCommand),
		LogLevel:     level,
		RateLimit:    v.GetFloat64(KeyRateLimit),
		RateBurst:    v.GetInt(KeyRateBurst),
		Width:        v.GetInt(KeyWidth),
		Height:       v.GetInt(KeyHeight),
		TimeLengths:  splitList(v.GetStringSlice(KeyTimeLengths)),
	}

	if cfg.ListenPort == "" {
		return Config{}, fmt.Errorf("%s must not be empty", KeyListenPort)
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst <= 0 {
		return Config{}, fmt.Errorf("%s and %s must be positive", KeyRateLimit, KeyRateBurst)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Config{}, fmt.Errorf("invalid graph size %dx%d", cfg.Width, cfg.Height)
	}
	if len(cfg.TimeLengths) == 0 {
		return Config{}, fmt.Errorf("%s must list at least one time length", KeyTimeLengths)
	}

	return cfg, nil
}

// splitList flattens entries like "4h,1w" that arrive from environment
// variables and drops blanks.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
