package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes the environment variable of every flag:
// --max-pages is also read from KGSCRAPE_MAX_PAGES.
const envPrefix = "KGSCRAPE"

// envAliases lists unprefixed variables accepted for a few keys, so
// deployments that already export START_URL or RAPIDAPI_KEY work as-is.
// The prefixed name is listed first and wins when both are set.
var envAliases = map[string][]string{
	"start-url":    {"KGSCRAPE_START_URL", "START_URL"},
	"max-pages":    {"KGSCRAPE_MAX_PAGES", "MAX_PAGES"},
	"extract-type": {"KGSCRAPE_EXTRACT_TYPE", "EXTRACT_TYPE"},
	"rapidapi-key": {"KGSCRAPE_RAPIDAPI_KEY", "RAPIDAPI_KEY"},
}

// newViper returns a viper instance bound to cmd's flags and the
// environment. Precedence: explicit flag, environment, flag default.
//
// Design decision: We use a fresh viper instance per command invocation
// rather than the global one, so tests can build configs side by side.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}
	return v, nil
}
