package config

// DefaultConfig returns configuration with sensible defaults. These
// defaults are used in full when no config file exists. When a config
// file exists, only its empty string fields (escrow sentinels, cache
// path) fall back to these defaults; its boolean fields (output flags,
// cache.enabled) are taken as written and are false when absent.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			SingleFile:             false,
			ElideNonTargetBodies:   false,
			RemoveUnusedEnumFields: false,
		},
		Escrow: EscrowConfig{
			CommentSentinel:    "\x02",
			StringSentinel:     "\x03",
			AttributeSentinel:  "\x04",
			MacroLineSentinel:  "\x05",
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "",
		},
	}
}

// Merge merges loaded config with defaults. Values from loaded config
// take precedence over defaults. Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)
	result.Escrow = mergeEscrowConfig(loaded.Escrow, defaults.Escrow)
	result.Cache = mergeCacheConfig(loaded.Cache, defaults.Cache)
	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	// Booleans can't distinguish "unset" from "false" after YAML decode;
	// the loaded value always wins once a file exists.
	return loaded
}

func mergeEscrowConfig(loaded, defaults EscrowConfig) EscrowConfig {
	result := defaults
	if loaded.CommentSentinel != "" {
		result.CommentSentinel = loaded.CommentSentinel
	}
	if loaded.StringSentinel != "" {
		result.StringSentinel = loaded.StringSentinel
	}
	if loaded.AttributeSentinel != "" {
		result.AttributeSentinel = loaded.AttributeSentinel
	}
	if loaded.MacroLineSentinel != "" {
		result.MacroLineSentinel = loaded.MacroLineSentinel
	}
	return result
}

func mergeCacheConfig(loaded, defaults CacheConfig) CacheConfig {
	result := loaded
	if result.Path == "" {
		result.Path = defaults.Path
	}
	return result
}
