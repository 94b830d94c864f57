package configs

import (
	"flag"
	"os"

	"github.com/nortavo/dispatch/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file from the --config flag, the
// DISPATCH_CONFIG env var, or a list of conventional locations. An empty
// result means run on defaults and env overrides alone.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("DISPATCH_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/dispatch/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
