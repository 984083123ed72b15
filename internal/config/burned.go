package config

import "github.com/spf13/pflag"

// BurnedConfig holds configuration for the burned command.
type BurnedConfig struct {
	ScanURL  string
	RPCURL   string
	Token    string
	LogLevel string
}

// LoadBurned merges config file, environment variables, and flags.
func LoadBurned(cfgFile string, flags *pflag.FlagSet) (BurnedConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"log-level": "info",
	})
	if err != nil {
		return BurnedConfig{}, err
	}

	return BurnedConfig{
		ScanURL:  v.GetString("scan-url"),
		RPCURL:   v.GetString("rpc"),
		Token:    v.GetString("token"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
