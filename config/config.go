// Package config loads the engine's startup configuration: book seeding and
// simulation, the two gateway listen addresses, and the dispatcher's display
// mode (spec.md §4.8 "Configuration (external)").
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration, grouped the same way the source's
// key-value file sections it (book / order-entry / market-data / display).
type Config struct {
	Book       BookConfig    `mapstructure:"book"`
	OrderEntry ListenConfig  `mapstructure:"order-entry"`
	MarketData ListenConfig  `mapstructure:"market-data"`
	Display    DisplayConfig `mapstructure:"display"`
}

// BookConfig controls whether the stochastic simulator runs and how the
// book is seeded at startup (spec.md §4.7).
type BookConfig struct {
	Simulate           bool  `mapstructure:"simulate"`
	InitialBestBid     int64 `mapstructure:"initial-best-bid"`
	InitialBestAsk     int64 `mapstructure:"initial-best-ask"`
	InitialLevels      int   `mapstructure:"initial-levels"`
	InitialOrders      int    `mapstructure:"initial-orders"`
	InitialOrderVolume int64  `mapstructure:"initial-order-volume"`
	TickSize           int64  `mapstructure:"tick-size"`
	Instrument         string `mapstructure:"instrument"`
}

// ListenConfig is one gateway's bind address, shared by order-entry and
// market-data (spec.md §4.8).
type ListenConfig struct {
	RequestAddress string `mapstructure:"request-address"`
	RequestPort    int    `mapstructure:"request-port"`
}

// Addr formats the listen address as host:port for net/http.
func (l ListenConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.RequestAddress, l.RequestPort)
}

// DisplayConfig selects the dispatcher's optional console logging style.
type DisplayConfig struct {
	Style string `mapstructure:"style"` // BOOK | MESSAGES | NONE
}

const (
	DisplayStyleBook     = "BOOK"
	DisplayStyleMessages = "MESSAGES"
	DisplayStyleNone     = "NONE"
)

// defaults mirror the source's sample config file closely enough to run
// out of the box in development.
func setDefaults(v *viper.Viper) {
	v.SetDefault("book.simulate", true)
	v.SetDefault("book.initial-best-bid", 100)
	v.SetDefault("book.initial-best-ask", 101)
	v.SetDefault("book.initial-levels", 15)
	v.SetDefault("book.initial-orders", 5)
	v.SetDefault("book.initial-order-volume", 10)
	v.SetDefault("book.tick-size", 1)
	v.SetDefault("book.instrument", "AAPL")

	v.SetDefault("order-entry.request-address", "0.0.0.0")
	v.SetDefault("order-entry.request-port", 8001)

	v.SetDefault("market-data.request-address", "0.0.0.0")
	v.SetDefault("market-data.request-port", 8002)

	v.SetDefault("display.style", DisplayStyleNone)
}

// Load reads config from path (any format viper supports: yaml, toml, ini,
// json), falling back to the defaults above for anything the file omits.
// LOB_-prefixed environment variables override any key, matching the
// pack's convention for config overrides (0xtitan6-polymarket-mm's POLY_*).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LOB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the engine assumes hold before it starts
// accepting connections.
func (c *Config) Validate() error {
	if c.Book.InitialBestBid >= c.Book.InitialBestAsk {
		return fmt.Errorf("book.initial-best-bid must be below book.initial-best-ask")
	}
	if c.Book.InitialLevels <= 0 {
		return fmt.Errorf("book.initial-levels must be > 0")
	}
	if c.Book.TickSize <= 0 {
		return fmt.Errorf("book.tick-size must be > 0")
	}
	if c.Book.Instrument == "" {
		return fmt.Errorf("book.instrument is required")
	}
	switch c.Display.Style {
	case DisplayStyleBook, DisplayStyleMessages, DisplayStyleNone:
	default:
		return fmt.Errorf("display.style must be one of BOOK, MESSAGES, NONE (got %q)", c.Display.Style)
	}
	return nil
}
