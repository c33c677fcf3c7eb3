// Package config centralizes runtime configuration. Every knob has a
// default and can be overridden through the environment.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Server timeouts.
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	ShutdownTimeout = 30 * time.Second
)

// MidnightGrace is how long past local midnight the scheduler waits before
// firing the compactor, so a reading in flight at 23:59:59 still lands on
// its own day.
const MidnightGrace = 30 * time.Second

// Load registers defaults and enables environment overrides.
func Load() error {
	viper.SetDefault("HOMEWATT_ADDR", ":3000")
	viper.SetDefault("HOMEWATT_DB", "./consumption.db")

	// Empty means the host's local zone.
	viper.SetDefault("HOMEWATT_TZ", "")

	// When true the compactor divides the daily device average by the
	// observed reading count instead of the fixed 24.
	viper.SetDefault("HOMEWATT_AVG_BY_COUNT", false)

	viper.AutomaticEnv()
	return nil
}

func Addr() string       { return viper.GetString("HOMEWATT_ADDR") }
func DBPath() string     { return viper.GetString("HOMEWATT_DB") }
func Timezone() string   { return viper.GetString("HOMEWATT_TZ") }
func AvgByCount() bool   { return viper.GetBool("HOMEWATT_AVG_BY_COUNT") }
