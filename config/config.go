// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/thediveo/lxkns/log"
)

// Defaults of a run.
const (
	DefaultWorkers  = 10
	DefaultServer   = "8.8.8.8"
	DefaultTimeout  = 5 * time.Second
	DefaultMaxDepth = 20
	DefaultNet      = "udp"

	MaxWorkers = 1000
)

// Config of a single perimdig run. Config is a plain value and doesn't change
// after startup.
type Config struct {
	Workers   int      `toml:"workers"`   // number of concurrent chain walks
	Server    string   `toml:"server"`    // DNS server address, port defaults to 53
	Timeout   Duration `toml:"timeout"`   // per-query timeout
	Retries   int      `toml:"retries"`   // retries on query timeouts
	Rate      float64  `toml:"rate"`      // max queries per second, 0 is unlimited
	MaxDepth  int      `toml:"max_depth"` // max aliases followed per chain
	IPv6      bool     `toml:"ipv6"`      // also query AAAA records
	Net       string   `toml:"net"`       // DNS transport, "udp" or "tcp"
	NetNS     string   `toml:"netns"`     // network namespace path to query and ping from
	Container string   `toml:"container"` // Docker container to query and ping from
	Ping      bool     `toml:"ping"`      // only report pingable addresses
	Output    string   `toml:"output"`    // optional report file, in addition to stdout
	Progress  bool     `toml:"progress"`  // show progress on stderr
	Debug     bool     `toml:"debug"`     // debug logging
}

// Duration type
type Duration struct {
	time.Duration
}

// UnmarshalText for duration type
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText for duration type
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Workers:  DefaultWorkers,
		Server:   DefaultServer,
		Timeout:  Duration{DefaultTimeout},
		MaxDepth: DefaultMaxDepth,
		Net:      DefaultNet,
	}
}

// Load the TOML configuration file at path on top of the base configuration,
// so that only the settings present in the file override the base settings.
// Unknown settings get logged, but are otherwise ignored.
func Load(path string, base Config) (Config, error) {
	cfg := base
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return base, fmt.Errorf("could not load config: %w", err)
	}
	for _, key := range md.Undecoded() {
		log.Warnf("ignoring unknown config setting %q in %s", key.String(), path)
	}
	return cfg, nil
}

// Validate the configuration, returning all problems found.
func (c Config) Validate() error {
	var result error
	if c.Workers < 1 || c.Workers > MaxWorkers {
		result = multierror.Append(result,
			fmt.Errorf("workers must be in 1..%d, got %d", MaxWorkers, c.Workers))
	}
	if c.Server == "" {
		result = multierror.Append(result, errors.New("DNS server must not be empty"))
	}
	if c.Timeout.Duration <= 0 {
		result = multierror.Append(result,
			fmt.Errorf("timeout must be positive, got %s", c.Timeout.Duration))
	}
	if c.Retries < 0 {
		result = multierror.Append(result,
			fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.Rate < 0 {
		result = multierror.Append(result,
			fmt.Errorf("rate must not be negative, got %v", c.Rate))
	}
	if c.MaxDepth < 1 {
		result = multierror.Append(result,
			fmt.Errorf("max depth must be at least 1, got %d", c.MaxDepth))
	}
	if c.NetNS != "" && c.Container != "" {
		result = multierror.Append(result, errors.New("netns and container are mutually exclusive"))
	}
	switch c.Net {
	case "udp", "tcp":
	default:
		result = multierror.Append(result,
			fmt.Errorf("DNS transport must be either udp or tcp, got %q", c.Net))
	}
	return result
}
