package config_test

import (
	"fmt"

	"github.com/fairvalue/screener/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Provider: %s\n", cfg.Provider.Kind)
	fmt.Printf("Cache TTL: %v\n", cfg.Cache.TTL)
}
