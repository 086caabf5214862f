package config

// Config represents the flux CLI configuration.
// Use mapstructure tags for Viper unmarshaling.
type Config struct {
	Security SecurityConfig `mapstructure:"security"`
	Pack     PackConfig     `mapstructure:"pack"`
}

// SecurityConfig overrides the engine's default extraction safety limits.
type SecurityConfig struct {
	MaxExtractionSize     int64   `mapstructure:"max_extraction_size"`
	MaxCompressionRatio   float64 `mapstructure:"max_compression_ratio"`
	AllowExternalSymlinks bool    `mapstructure:"allow_external_symlinks"`
}

// PackConfig supplies the pack command's --level and --threads values when
// those flags are not given on the command line.
type PackConfig struct {
	Level   int `mapstructure:"level"`
	Threads int `mapstructure:"threads"`
}
