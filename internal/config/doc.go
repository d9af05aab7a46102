// Package config loads configuration for the search service and the CLI
// client from environment variables, optionally seeded from a .env file
// named by HUNGRY_ENV_FILE.
//
//	cfg, err := config.Load()       // search service
//	ccfg, err := config.LoadClient() // hungry CLI
//
// Both Validate methods report every problem at once via errors.Join.
package config
