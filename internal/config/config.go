package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/foodaccess-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Plan     PlanConfig     `yaml:"plan" mapstructure:"plan"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool,omitempty" mapstructure:"pool"`
}

// PlanConfig configures the placement analysis defaults. Command-line flags
// override these per run.
type PlanConfig struct {
	GridResolution      float64 `yaml:"grid_resolution" mapstructure:"grid_resolution"`
	MaxSuggestions      int     `yaml:"max_suggestions" mapstructure:"max_suggestions"`
	EquityWeight        float64 `yaml:"equity_weight" mapstructure:"equity_weight"`
	MinCoverage         float64 `yaml:"min_coverage" mapstructure:"min_coverage"`
	MaxClusterDistanceM float64 `yaml:"max_cluster_distance_m" mapstructure:"max_cluster_distance_m"`
	ScoreConcurrency    int     `yaml:"score_concurrency" mapstructure:"score_concurrency"`
	PopulationSize      int     `yaml:"population_size" mapstructure:"population_size"`
	Generations         int     `yaml:"generations" mapstructure:"generations"`
	CrossoverRate       float64 `yaml:"crossover_rate" mapstructure:"crossover_rate"`
	MutationRate        float64 `yaml:"mutation_rate" mapstructure:"mutation_rate"`
	Seed                uint64  `yaml:"seed" mapstructure:"seed"`
	CatalogPath         string  `yaml:"catalog_path" mapstructure:"catalog_path"`
}

// OverpassConfig configures the OpenStreetMap Overpass backend for transit
// and outlet lookups.
type OverpassConfig struct {
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FOODACCESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "foodaccess.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("plan.grid_resolution", 0.01)
	v.SetDefault("plan.max_suggestions", 10)
	v.SetDefault("plan.equity_weight", 0.3)
	v.SetDefault("plan.min_coverage", 0.6)
	v.SetDefault("plan.max_cluster_distance_m", 800)
	v.SetDefault("plan.score_concurrency", 8)
	v.SetDefault("plan.population_size", 100)
	v.SetDefault("plan.generations", 200)
	v.SetDefault("plan.crossover_rate", 0.8)
	v.SetDefault("plan.mutation_rate", 0.2)
	v.SetDefault("overpass.endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.rate_limit", 1)
	v.SetDefault("overpass.timeout_secs", 30)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
