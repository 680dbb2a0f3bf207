package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/paw-chain/pairpool/app"
	"github.com/paw-chain/pairpool/app/telemetry"
)

// EnvPrefix prefixes every environment variable pairpoold reads, e.g.
// PAIRPOOL_POOL_DENOM_A for pool.denom-a.
const EnvPrefix = "PAIRPOOL"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	LogLevel  string
	LogFormat string

	App       app.Config
	Server    ServerConfig
	Telemetry telemetry.Config
}

// ServerConfig configures `pairpoold serve`.
type ServerConfig struct {
	Listen        string
	MetricsListen string
	DataDir       string
	Genesis       string
	MaxFaucet     string
	CORS          bool
}

// flagKeys maps command-line flags to their config keys.
var flagKeys = map[string]string{
	"log-level":      "log.level",
	"log-format":     "log.format",
	"denom-a":        "pool.denom-a",
	"denom-b":        "pool.denom-b",
	"fee-bps-a":      "ledger.fee-bps-a",
	"fee-bps-b":      "ledger.fee-bps-b",
	"oracle-window":  "oracle.window",
	"listen":         "server.listen",
	"metrics-listen": "server.metrics-listen",
	"data-dir":       "server.data-dir",
	"genesis":        "server.genesis",
	"max-faucet":     "server.max-faucet",
	"cors":           "server.cors",

	"tracing":             "telemetry.enabled",
	"tracing-endpoint":    "telemetry.endpoint",
	"tracing-sample-rate": "telemetry.sample-rate",
}

// LoadConfig merges config file, environment variables, and flags into Config.
// Flags win over the environment, which wins over the file.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := app.DefaultConfig()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("pool.denom-a", defaults.DenomA)
	v.SetDefault("pool.denom-b", defaults.DenomB)
	v.SetDefault("ledger.fee-bps-a", defaults.FeeBpsA)
	v.SetDefault("ledger.fee-bps-b", defaults.FeeBpsB)
	v.SetDefault("oracle.window", defaults.OracleWindow)
	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("server.metrics-listen", "127.0.0.1:26660")
	v.SetDefault("server.data-dir", "")
	v.SetDefault("server.genesis", "")
	v.SetDefault("server.max-faucet", "")
	v.SetDefault("server.cors", true)

	tracing := telemetry.DefaultConfig()
	v.SetDefault("telemetry.enabled", tracing.Enabled)
	v.SetDefault("telemetry.endpoint", tracing.Endpoint)
	v.SetDefault("telemetry.sample-rate", tracing.SampleRate)
	v.SetDefault("telemetry.environment", tracing.Environment)

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	window, err := durationValue(v, "oracle.window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		App: app.Config{
			DenomA:       v.GetString("pool.denom-a"),
			DenomB:       v.GetString("pool.denom-b"),
			FeeBpsA:      v.GetUint32("ledger.fee-bps-a"),
			FeeBpsB:      v.GetUint32("ledger.fee-bps-b"),
			OracleWindow: window,
		},
		Server: ServerConfig{
			Listen:        v.GetString("server.listen"),
			MetricsListen: v.GetString("server.metrics-listen"),
			DataDir:       v.GetString("server.data-dir"),
			Genesis:       v.GetString("server.genesis"),
			MaxFaucet:     v.GetString("server.max-faucet"),
			CORS:          v.GetBool("server.cors"),
		},
		Telemetry: telemetry.Config{
			Enabled:     v.GetBool("telemetry.enabled"),
			Endpoint:    v.GetString("telemetry.endpoint"),
			SampleRate:  v.GetFloat64("telemetry.sample-rate"),
			Environment: v.GetString("telemetry.environment"),
			Version:     Version,
		},
	}

	if err := cfg.App.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// durationValue reads key as a duration, rejecting text GetDuration would
// silently turn into zero.
func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	switch raw := v.Get(key).(type) {
	case time.Duration:
		return raw, nil
	case string:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	default:
		return v.GetDuration(key), nil
	}
}
