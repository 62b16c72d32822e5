package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	ListenAddr   string
	Store        string
	PGDSN        string
	RPCURL       string
	TokenAddress string
	OwnerKey     string
	JWTSecret    string
	ConfirmPoll  time.Duration
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COMMUNITYD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", ":8080")
	v.SetDefault("store", "postgres")
	v.SetDefault("confirm-poll", 2*time.Second)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ListenAddr:   v.GetString("listen"),
		Store:        v.GetString("store"),
		PGDSN:        v.GetString("pg-dsn"),
		RPCURL:       v.GetString("rpc"),
		TokenAddress: v.GetString("token-address"),
		OwnerKey:     v.GetString("owner-key"),
		JWTSecret:    v.GetString("jwt-secret"),
		ConfirmPoll:  v.GetDuration("confirm-poll"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}
