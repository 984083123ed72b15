package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SeriesConfig holds configuration for the series command, loaded from
// flags, env, or config file.
type SeriesConfig struct {
	ScanURL      string
	RPCURL       string
	Pair         string
	Range        string
	PageSize     int
	MaxPages     int
	ResolveBatch int
	Out          string
	PGDSN        string
	LogLevel     string
}

// LoadSeries merges config file, environment variables, and flags.
func LoadSeries(cfgFile string, flags *pflag.FlagSet) (SeriesConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"range":         "1D",
		"page-size":     1000,
		"max-pages":     10,
		"resolve-batch": 50,
		"log-level":     "info",
	})
	if err != nil {
		return SeriesConfig{}, err
	}

	return SeriesConfig{
		ScanURL:      v.GetString("scan-url"),
		RPCURL:       v.GetString("rpc"),
		Pair:         v.GetString("pair"),
		Range:        v.GetString("range"),
		PageSize:     v.GetInt("page-size"),
		MaxPages:     v.GetInt("max-pages"),
		ResolveBatch: v.GetInt("resolve-batch"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("PRICESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
