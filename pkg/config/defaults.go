package config

// Default returns a Config with working defaults for every section.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			PopulationSize: 50,
			MaxGenerations: 100,
			MaxGoroutines:  4,
		},
		Archive: ArchiveConfig{
			Preference: "smaller",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
