package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Catalog.Source == "" {
		if cfg.Catalog.Path == "" {
			cfg.Catalog.Source = SourceEmbedded
		} else {
			cfg.Catalog.Source = SourceFile
		}
	}
	if cfg.Search.ParseCacheSize == 0 {
		cfg.Search.ParseCacheSize = 1000
	}
	if cfg.Search.DefaultMode == "" {
		cfg.Search.DefaultMode = "natural"
	}
	// The product card shows the first 80 characters of the description.
	if cfg.Search.DescriptionLength == 0 {
		cfg.Search.DescriptionLength = 80
	}
}
