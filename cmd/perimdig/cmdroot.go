// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/siemens/perimdig/config"

	"github.com/spf13/cobra"
)

// overrides copies the settings of explicitly given flags onto a
// configuration.
var overrides = []struct {
	flag  string
	apply func(dst *config.Config, src config.Config)
}{
	{"workers", func(d *config.Config, s config.Config) { d.Workers = s.Workers }},
	{"server", func(d *config.Config, s config.Config) { d.Server = s.Server }},
	{"timeout", func(d *config.Config, s config.Config) { d.Timeout = s.Timeout }},
	{"retries", func(d *config.Config, s config.Config) { d.Retries = s.Retries }},
	{"rate", func(d *config.Config, s config.Config) { d.Rate = s.Rate }},
	{"max-depth", func(d *config.Config, s config.Config) { d.MaxDepth = s.MaxDepth }},
	{"ipv6", func(d *config.Config, s config.Config) { d.IPv6 = s.IPv6 }},
	{"net", func(d *config.Config, s config.Config) { d.Net = s.Net }},
	{"netns", func(d *config.Config, s config.Config) { d.NetNS = s.NetNS }},
	{"container", func(d *config.Config, s config.Config) { d.Container = s.Container }},
	{"ping", func(d *config.Config, s config.Config) { d.Ping = s.Ping }},
	{"output", func(d *config.Config, s config.Config) { d.Output = s.Output }},
	{"progress", func(d *config.Config, s config.Config) { d.Progress = s.Progress }},
	{"debug", func(d *config.Config, s config.Config) { d.Debug = s.Debug }},
}

func newRootCmd() (rootCmd *cobra.Command) {
	flags := config.Default()
	var cfgfile string
	var cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "perimdig [flags] SOURCE PERIMETERFILE",
		Short: "perimdig finds the hostnames in SOURCE that resolve into the network perimeter",
		Long: `perimdig extracts candidate hostnames from the SOURCE file or directory tree,
follows each hostname through its complete DNS CNAME chain, and reports every
hostname and alias that resolves into an IP address inside the perimeter.

PERIMETERFILE lists the perimeter, one entry per line: an IP address (such as
192.0.2.1 or 192.0.2.1/32), or a network in CIDR notation (such as
10.0.0.0/8). Lines starting with "#" are ignored.

The findings are printed on stdout as sorted "hostname[ip]" lines.`,
		Version:      "0.9",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg = config.Default()
			if cfgfile != "" {
				var err error
				if cfg, err = config.Load(cfgfile, cfg); err != nil {
					return err
				}
			}
			for _, o := range overrides {
				if cmd.Flags().Changed(o.flag) {
					o.apply(&cfg, flags)
				}
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			setupLogging(cmd.ErrOrStderr(), cfg.Debug)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return DigAndReport(cmd.Context(), cfg, args[0], args[1], cmd.OutOrStdout(), nil)
		},
	}
	// Sets up the flags.
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&flags.Workers, "workers", "t", flags.Workers,
		fmt.Sprintf("number of concurrent DNS chain walks [1..%d]", config.MaxWorkers))
	pf.StringVarP(&flags.Server, "server", "s", flags.Server,
		"DNS server to query, as host or host:port")
	pf.DurationVar(&flags.Timeout.Duration, "timeout", flags.Timeout.Duration,
		"timeout per DNS query")
	pf.IntVar(&flags.Retries, "retries", flags.Retries,
		"number of retries for timed out DNS queries")
	pf.Float64Var(&flags.Rate, "rate", flags.Rate,
		"maximum DNS queries per second, 0 for unlimited")
	pf.IntVar(&flags.MaxDepth, "max-depth", flags.MaxDepth,
		"maximum number of CNAME aliases followed per hostname")
	pf.BoolVarP(&flags.IPv6, "ipv6", "6", flags.IPv6,
		"also resolve IPv6 (AAAA) addresses")
	pf.StringVar(&flags.Net, "net", flags.Net,
		"DNS transport, either udp or tcp")
	pf.StringVar(&flags.NetNS, "netns", flags.NetNS,
		"network namespace path to query and ping from, such as /proc/42/ns/net")
	pf.StringVar(&flags.Container, "container", flags.Container,
		"Docker container to query and ping from, instead of --netns")
	pf.BoolVar(&flags.Ping, "ping", flags.Ping,
		"only report addresses answering pings")
	pf.StringVarP(&flags.Output, "output", "o", flags.Output,
		"additionally write the findings into this file")
	pf.BoolVar(&flags.Progress, "progress", flags.Progress,
		"show progress on stderr")
	pf.BoolVarP(&flags.Debug, "debug", "d", flags.Debug,
		"enable debugging output")
	pf.StringVar(&cfgfile, "config", "",
		"TOML configuration file; flags take precedence")
	return
}
