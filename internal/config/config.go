package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the process-level configuration. It is fixed at startup and
// never reloaded.
type Config struct {
	Server       ServerConfig       `toml:"server" yaml:"server"`
	World        WorldConfig        `toml:"world" yaml:"world"`
	Pellets      PelletConfig       `toml:"pellets" yaml:"pellets"`
	BattleRoyale BattleRoyaleConfig `toml:"battle_royale" yaml:"battle_royale"`
	AFK          AFKConfig          `toml:"afk" yaml:"afk"`
	Logging      LoggingConfig      `toml:"logging" yaml:"logging"`
}

type ServerConfig struct {
	BindAddress    string        `toml:"bind_address" yaml:"bind_address"`
	WebSocketPath  string        `toml:"websocket_path" yaml:"websocket_path"`
	StaticDir      string        `toml:"static_dir" yaml:"static_dir"` // empty disables static serving
	MaxConnections int           `toml:"max_connections" yaml:"max_connections"`
	IPCooldown     time.Duration `toml:"ip_cooldown" yaml:"ip_cooldown"` // min gap between connects from one IP
	SendQueueSize  int           `toml:"send_queue_size" yaml:"send_queue_size"`
	WriteTimeout   time.Duration `toml:"write_timeout" yaml:"write_timeout"`
	ReadTimeout    time.Duration `toml:"read_timeout" yaml:"read_timeout"`
}

// WorldConfig holds the simulation constants shared by every room.
type WorldConfig struct {
	Width          float64       `toml:"width" yaml:"width"`
	Height         float64       `toml:"height" yaml:"height"`
	Margin         float64       `toml:"margin" yaml:"margin"` // positions clamp to [margin, size-margin]
	TickInterval   time.Duration `toml:"tick_interval" yaml:"tick_interval"`
	BaseSpeed      float64       `toml:"base_speed" yaml:"base_speed"` // px/s at mass 100
	Friction       float64       `toml:"friction" yaml:"friction"`     // per-tick velocity multiplier
	StartMass      float64       `toml:"start_mass" yaml:"start_mass"`
	AOIRadius      float64       `toml:"aoi_radius" yaml:"aoi_radius"`
	MaxNameLength  int           `toml:"max_name_length" yaml:"max_name_length"`
	LeaderboardLen int           `toml:"leaderboard_size" yaml:"leaderboard_size"`
	StatusLogEvery time.Duration `toml:"status_log_every" yaml:"status_log_every"`
}

type PelletConfig struct {
	Count        int     `toml:"count" yaml:"count"` // target size of every room's pellet field
	Value        float64 `toml:"value" yaml:"value"` // mass gained per pellet
	PickupMargin float64 `toml:"pickup_margin" yaml:"pickup_margin"`
}

type BattleRoyaleConfig struct {
	RequiredPlayers  int           `toml:"required_players" yaml:"required_players"`
	MatchDuration    time.Duration `toml:"match_duration" yaml:"match_duration"`
	ShrinkStartAfter time.Duration `toml:"shrink_start_after" yaml:"shrink_start_after"`
	MinZoneRadius    float64       `toml:"min_zone_radius" yaml:"min_zone_radius"`
}

type AFKConfig struct {
	WarnAfter  time.Duration `toml:"warn_after" yaml:"warn_after"`
	EvictAfter time.Duration `toml:"evict_after" yaml:"evict_after"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Load reads the file at path on top of the defaults. The format is chosen
// by extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress:    ":8080",
			WebSocketPath:  "/ws",
			MaxConnections: 500,
			IPCooldown:     2 * time.Second,
			SendQueueSize:  64,
			WriteTimeout:   10 * time.Second,
			ReadTimeout:    60 * time.Second,
		},
		World: WorldConfig{
			Width:          3000,
			Height:         3000,
			Margin:         20,
			TickInterval:   50 * time.Millisecond, // 20 ticks/sec
			BaseSpeed:      240,
			Friction:       0.90,
			StartMass:      100, // radius 10
			AOIRadius:      900,
			MaxNameLength:  12,
			LeaderboardLen: 5,
			StatusLogEvery: time.Minute,
		},
		Pellets: PelletConfig{
			Count:        400,
			Value:        1,
			PickupMargin: 4,
		},
		BattleRoyale: BattleRoyaleConfig{
			RequiredPlayers:  4,
			MatchDuration:    3 * time.Minute,
			ShrinkStartAfter: 30 * time.Second,
			MinZoneRadius:    150,
		},
		AFK: AFKConfig{
			WarnAfter:  15 * time.Second,
			EvictAfter: 18 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ApplyEnv overrides selected fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("BLOBBET_BIND"); v != "" {
		c.Server.BindAddress = v
	}
	if v := os.Getenv("BLOBBET_STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("BLOBBET_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BLOBBET_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// FullZoneRadius is the battle-royale safe-zone radius at match start:
// half the smaller world dimension.
func (c *Config) FullZoneRadius() float64 {
	return min(c.World.Width, c.World.Height) / 2
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	w := c.World
	switch {
	case w.Width <= 0 || w.Height <= 0:
		return fmt.Errorf("world size must be positive, got %.0fx%.0f", w.Width, w.Height)
	case w.Margin < 0 || 2*w.Margin >= min(w.Width, w.Height):
		return fmt.Errorf("world margin %.1f does not fit a %.0fx%.0f world", w.Margin, w.Width, w.Height)
	case w.TickInterval <= 0:
		return fmt.Errorf("tick interval must be positive, got %s", w.TickInterval)
	case w.Friction <= 0 || w.Friction > 1:
		return fmt.Errorf("friction must be in (0,1], got %v", w.Friction)
	case w.StartMass <= 0:
		return fmt.Errorf("start mass must be positive, got %v", w.StartMass)
	case w.AOIRadius <= 0:
		return fmt.Errorf("aoi radius must be positive, got %v", w.AOIRadius)
	case w.MaxNameLength <= 0:
		return fmt.Errorf("max name length must be positive, got %d", w.MaxNameLength)
	case w.LeaderboardLen <= 0:
		return fmt.Errorf("leaderboard size must be positive, got %d", w.LeaderboardLen)
	}

	if c.Pellets.Count < 0 || c.Pellets.Value <= 0 {
		return fmt.Errorf("pellets: count %d value %v", c.Pellets.Count, c.Pellets.Value)
	}

	br := c.BattleRoyale
	switch {
	case br.RequiredPlayers < 2:
		return fmt.Errorf("battle royale needs at least 2 players, got %d", br.RequiredPlayers)
	case br.MatchDuration <= 0 || br.ShrinkStartAfter < 0 || br.ShrinkStartAfter >= br.MatchDuration:
		return fmt.Errorf("battle royale shrink start %s must fall inside match duration %s",
			br.ShrinkStartAfter, br.MatchDuration)
	case br.MinZoneRadius < 0 || br.MinZoneRadius >= c.FullZoneRadius():
		return fmt.Errorf("min zone radius %.1f must be below full radius %.1f", br.MinZoneRadius, c.FullZoneRadius())
	}

	if c.AFK.WarnAfter <= 0 || c.AFK.EvictAfter <= c.AFK.WarnAfter {
		return fmt.Errorf("afk warn %s must be positive and below evict %s", c.AFK.WarnAfter, c.AFK.EvictAfter)
	}
	s := c.Server
	switch {
	case s.SendQueueSize <= 0:
		return fmt.Errorf("send queue size must be positive, got %d", s.SendQueueSize)
	case s.MaxConnections <= 0:
		return fmt.Errorf("max connections must be positive, got %d", s.MaxConnections)
	case s.ReadTimeout <= 0 || s.WriteTimeout <= 0:
		return fmt.Errorf("read/write timeouts must be positive, got %s/%s", s.ReadTimeout, s.WriteTimeout)
	case !strings.HasPrefix(s.WebSocketPath, "/"):
		return fmt.Errorf("websocket path %q must start with /", s.WebSocketPath)
	}
	return nil
}
