/*
Package config defines the configuration of a perimdig run and loads it from
an optional TOML file.

Settings are layered: built-in defaults, then the settings found in the
configuration file, and finally the command line flags explicitly given.

	workers = 50
	server = "9.9.9.9:53"
	timeout = "2s"
	retries = 1
	rate = 100.0
	max_depth = 10
	ipv6 = true
	net = "tcp"
*/
package config
