package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/peterkuimelis/goldfish/internal/catalog"
	"github.com/peterkuimelis/goldfish/internal/game"
	"github.com/peterkuimelis/goldfish/internal/log"
)

// Config is the process configuration. Every key has a default, so an empty
// or missing file is valid.
type Config struct {
	CatalogPath string        `mapstructure:"catalog"`
	Engine      EngineConfig  `mapstructure:"engine"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Server      ServerConfig  `mapstructure:"server"`
}

type EngineConfig struct {
	Seed         int64         `mapstructure:"seed"`
	HandSize     int           `mapstructure:"hand_size"`
	Library      int           `mapstructure:"library"`
	Life         int           `mapstructure:"life"`
	MaxHandSize  int           `mapstructure:"max_hand_size"`
	ManaChance   float64       `mapstructure:"mana_chance"`
	AttackChance float64       `mapstructure:"attack_chance"`
	AutoAdvance  time.Duration `mapstructure:"auto_advance"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	TCPPort  int    `mapstructure:"tcp_port"`
	HTTPAddr string `mapstructure:"http_addr"`
	MCPName  string `mapstructure:"mcp_name"`
}

// EnvPrefix prefixes environment overrides, e.g. GOLDFISH_ENGINE_LIFE=20.
const EnvPrefix = "GOLDFISH"

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog", "")

	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.hand_size", game.DefaultHandSize)
	v.SetDefault("engine.library", game.DefaultLibrary)
	v.SetDefault("engine.life", game.DefaultLife)
	v.SetDefault("engine.max_hand_size", game.DefaultMaxHandSize)
	v.SetDefault("engine.mana_chance", game.DefaultManaChance)
	v.SetDefault("engine.attack_chance", game.DefaultAttackChance)
	v.SetDefault("engine.auto_advance", 5*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.tcp_port", 7777)
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.mcp_name", "goldfish")
}

// Load reads an optional .env file, then the YAML file at path (if path is
// non-empty), then GOLDFISH_* environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// LoadCatalog returns the configured catalog, or the embedded default when no
// path is set.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if c.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(c.CatalogPath)
}

// GameConfig builds a controller config from the engine section.
func (c *Config) GameConfig(cat *catalog.Catalog, events log.EventLogger, zl *zap.Logger) game.Config {
	return game.Config{
		Catalog: cat,
		Logger:  events,
		Zap:     zl,
		Seed:    c.Engine.Seed,
		StartingStats: game.Stats{
			HandSize: c.Engine.HandSize,
			Library:  c.Engine.Library,
			Life:     c.Engine.Life,
		},
		MaxHandSize:  c.Engine.MaxHandSize,
		ManaChance:   c.Engine.ManaChance,
		AttackChance: c.Engine.AttackChance,
		AutoAdvance:  c.Engine.AutoAdvance,
	}
}
