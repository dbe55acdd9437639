package skipper

/*------------------------------------------------------------------
 *
 * Purpose: Run configuration and its optional YAML defaults overlay.
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DebugChannel selects what an output channel carries instead of the
// plain input sample: the mono downmix, the band-limited signal, the
// envelope level, or the current tensor score.
type DebugChannel int

const (
	DebugNormal DebugChannel = iota
	DebugMono
	DebugFiltered
	DebugLevel
	DebugTensor
)

// ParseDebugChannel validates a -l/-r debug channel selector value
// (1=mono, 2=filtered, 3=level, 4=tensor).
func ParseDebugChannel(n int) (DebugChannel, error) {
	if n < 0 || n > 4 {
		return DebugNormal, configErrorf("debug channel selector must be 0..4, got %d", n)
	}
	return DebugChannel(n), nil
}

// DefaultThreshold is the score-sum comparison threshold used when
// neither -m nor -t supplies an override.
const DefaultThreshold = 0.0

// Config holds every operator-controllable knob.
type Config struct {
	Rate     int
	Channels int

	Policy    SkipPolicy
	Threshold float64
	KeepAlive bool

	LeftDebug  DebugChannel
	RightDebug DebugChannel

	TensorPath   string
	AnalysisPath string

	Quiet           bool
	Verbose         bool
	ProgressSeconds int
}

// DefaultConfig returns the baseline configuration: 44100 Hz, 2
// channels, pass-all.
func DefaultConfig() Config {
	return Config{
		Rate:            44100,
		Channels:        2,
		Policy:          PassAll,
		Threshold:       DefaultThreshold,
		ProgressSeconds: 30,
	}
}

// Validate checks the configuration's documented ranges, returning a
// configuration error on the first violation.
func (c Config) Validate() error {
	if c.Rate < 11025 || c.Rate > 96000 {
		return configErrorf("sample rate %d out of range [11025,96000]", c.Rate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return configErrorf("channel count must be 1 or 2, got %d", c.Channels)
	}
	return nil
}

// yamlDefaults mirrors the subset of Config an operator may pre-seed
// from a skipper.yaml companion file. Fields left absent in the file
// keep Config's current value and can still be overridden by whatever
// the CLI parser sets afterward.
type yamlDefaults struct {
	Rate            *int     `yaml:"rate"`
	Channels        *int     `yaml:"channels"`
	Threshold       *float64 `yaml:"threshold"`
	KeepAlive       *bool    `yaml:"keep_alive"`
	Quiet           *bool    `yaml:"quiet"`
	Verbose         *bool    `yaml:"verbose"`
	ProgressSeconds *int     `yaml:"progress_seconds"`
}

// LoadDefaults reads an optional YAML defaults file and applies any
// fields it sets onto cfg, returning the merged configuration. A
// missing file is not an error; the defaults file is optional.
func LoadDefaults(path string, cfg Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, resourceError(fmt.Sprintf("reading config defaults %q", path), err)
	}

	var y yamlDefaults
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return cfg, configErrorf("parsing config defaults %q: %v", path, err)
	}

	if y.Rate != nil {
		cfg.Rate = *y.Rate
	}
	if y.Channels != nil {
		cfg.Channels = *y.Channels
	}
	if y.Threshold != nil {
		cfg.Threshold = *y.Threshold
	}
	if y.KeepAlive != nil {
		cfg.KeepAlive = *y.KeepAlive
	}
	if y.Quiet != nil {
		cfg.Quiet = *y.Quiet
	}
	if y.Verbose != nil {
		cfg.Verbose = *y.Verbose
	}
	if y.ProgressSeconds != nil {
		cfg.ProgressSeconds = *y.ProgressSeconds
	}
	return cfg, nil
}
