package coarsening

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages coarsening configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Coarsening parameters
	v.SetDefault("coarsening.max_allowed_node_weight", 100)
	v.SetDefault("coarsening.contraction_limit", 160)
	v.SetDefault("coarsening.prefer_heavier_side", false)

	// Preprocessing parameters
	v.SetDefault("preprocessing.enable_community_detection", true)
	v.SetDefault("preprocessing.resolution", 1.0)

	// Algorithm parameters
	v.SetDefault("algorithm.random_seed", time.Now().UnixNano())

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.verbose", false)

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for coarsening parameters
func (c *Config) MaxAllowedNodeWeight() int { return c.v.GetInt("coarsening.max_allowed_node_weight") }
func (c *Config) ContractionLimit() int     { return c.v.GetInt("coarsening.contraction_limit") }
func (c *Config) PreferHeavierSide() bool   { return c.v.GetBool("coarsening.prefer_heavier_side") }

func (c *Config) EnableCommunityDetection() bool {
	return c.v.GetBool("preprocessing.enable_community_detection")
}
func (c *Config) Resolution() float64 { return c.v.GetFloat64("preprocessing.resolution") }

func (c *Config) RandomSeed() int64 { return c.v.GetInt64("algorithm.random_seed") }

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }
func (c *Config) Verbose() bool    { return c.v.GetBool("logging.verbose") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "coarsening").Logger()
}
