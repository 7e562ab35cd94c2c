package config

import (
	"errors"
	"fmt"
)

// maxWorkers caps the enrichment pool; TMDB and OMDb throttle well below this.
const maxWorkers = 64

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/marquee/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'marquee config init')", defaultPath)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers > maxWorkers {
		return fmt.Errorf("pipeline.workers must be at most %d", maxWorkers)
	}
	if c.Pipeline.ResultLimit > c.Pipeline.DiscoveryTarget {
		return errors.New("pipeline.result_limit must not exceed pipeline.discovery_target")
	}
	if c.Pipeline.ContextWindow > 50 {
		return errors.New("pipeline.context_window must be at most 50 turns")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
