package app

import "flag"

// Config represents the command-line parameters for the GUI.
type Config struct {
	Scale     float64
	HUDWidth  int
	Seed      int64
	Resizable bool
	Audio     bool
	Paused    bool
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Scale: 1, HUDWidth: 280, Seed: 1337, Resizable: true}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Float64Var(&c.Scale, "scale", c.Scale, "screen pixels per world unit")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "width of the parameter panel in pixels (0 hides it)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for the initial universe")
	fs.BoolVar(&c.Resizable, "resizable", c.Resizable, "let window resizes reshape the world")
	fs.BoolVar(&c.Audio, "audio", c.Audio, "play audio cues for anomalies and inflations")
	fs.BoolVar(&c.Paused, "paused", c.Paused, "start with the simulation stopped")
}
