package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
)

// Config is the full board configuration.
type Config struct {
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// GameConfig holds the rule options a new game starts with.
type GameConfig struct {
	StartingMoney    int           `mapstructure:"starting_money"`
	FreeParkingPool  bool          `mapstructure:"free_parking_pool"`
	JailMaxTurns     int           `mapstructure:"jail_max_turns"`
	AutoRent         bool          `mapstructure:"auto_rent"`
	CardPayments     bool          `mapstructure:"card_payments"`
	DiceSpeed        int           `mapstructure:"dice_speed"`
	Volume           int           `mapstructure:"volume"`
	Extension        bool          `mapstructure:"extension"`
	Bankruptcy       string        `mapstructure:"bankruptcy"`
	InputTimeout     time.Duration `mapstructure:"input_timeout"`
	AuctionSeconds   int           `mapstructure:"auction_seconds"`
	AuctionIncrement int           `mapstructure:"auction_increment"`
	Seed             int64         `mapstructure:"seed"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects where snapshots are saved.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// SessionConfig controls the session manager.
type SessionConfig struct {
	Autosave bool `mapstructure:"autosave"`
}

// ReplayConfig controls replay recording.
type ReplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load reads configuration from path, falling back to defaults when the file
// does not exist. Environment variables prefixed MONOPOLY_ override both,
// e.g. MONOPOLY_GAME_AUTO_RENT=false.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MONOPOLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := game.DefaultSettings()
	v.SetDefault("game.starting_money", d.StartingMoney)
	v.SetDefault("game.free_parking_pool", d.FreeParkingPool)
	v.SetDefault("game.jail_max_turns", d.JailMaxTurns)
	v.SetDefault("game.auto_rent", d.AutoRent)
	v.SetDefault("game.card_payments", d.CardPayments)
	v.SetDefault("game.dice_speed", d.DiceSpeed)
	v.SetDefault("game.volume", d.Volume)
	v.SetDefault("game.extension", d.Extension)
	v.SetDefault("game.bankruptcy", string(d.Bankruptcy))
	v.SetDefault("game.input_timeout", d.InputTimeout)
	v.SetDefault("game.auction_seconds", d.AuctionSeconds)
	v.SetDefault("game.auction_increment", d.AuctionIncrement)
	v.SetDefault("game.seed", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.path", "saves")
	v.SetDefault("storage.dsn", "")

	v.SetDefault("session.autosave", true)

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.dir", "replays")
}

// Validate checks the configuration for values the engine or stores would reject.
func (c *Config) Validate() error {
	if err := c.Game.Settings().Validate(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for driver %s", c.Storage.Driver)
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage dsn is required for driver %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Replay.Enabled && c.Replay.Dir == "" {
		return fmt.Errorf("replay dir is required when replays are enabled")
	}
	return nil
}

// Settings converts the game section into engine settings. Presentation
// timings keep their defaults.
func (g GameConfig) Settings() game.Settings {
	s := game.DefaultSettings()
	s.StartingMoney = g.StartingMoney
	s.FreeParkingPool = g.FreeParkingPool
	s.JailMaxTurns = g.JailMaxTurns
	s.AutoRent = g.AutoRent
	s.CardPayments = g.CardPayments
	s.DiceSpeed = g.DiceSpeed
	s.Volume = g.Volume
	s.Extension = g.Extension
	s.Bankruptcy = game.BankruptcyPolicy(g.Bankruptcy)
	s.InputTimeout = g.InputTimeout
	s.AuctionSeconds = g.AuctionSeconds
	s.AuctionIncrement = g.AuctionIncrement
	return s
}
