// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/siemens/perimdig/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("configuration", func() {

	var tmpdir string

	BeforeEach(func() {
		tmpdir = Successful(os.MkdirTemp("", "perimdig-config-*"))
		DeferCleanup(os.RemoveAll, tmpdir)
	})

	writeConfig := func(content string) string {
		path := filepath.Join(tmpdir, "perimdig.toml")
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	It("has sane defaults", func() {
		cfg := config.Default()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Workers).To(Equal(10))
		Expect(cfg.Server).To(Equal("8.8.8.8"))
		Expect(cfg.Timeout.Duration).To(Equal(5 * time.Second))
		Expect(cfg.MaxDepth).To(Equal(20))
		Expect(cfg.Net).To(Equal("udp"))
		Expect(cfg.Retries).To(BeZero())
		Expect(cfg.Rate).To(BeZero())
		Expect(cfg.IPv6).To(BeFalse())
		Expect(cfg.Ping).To(BeFalse())
	})

	It("overrides defaults with settings from a file", func() {
		cfg := Successful(config.Load(writeConfig(`
workers = 50
server = "9.9.9.9:53"
timeout = "2s"
ipv6 = true
frobnicate = 42
`), config.Default()))
		Expect(cfg.Workers).To(Equal(50))
		Expect(cfg.Server).To(Equal("9.9.9.9:53"))
		Expect(cfg.Timeout.Duration).To(Equal(2 * time.Second))
		Expect(cfg.IPv6).To(BeTrue())
		Expect(cfg.MaxDepth).To(Equal(config.DefaultMaxDepth))
		Expect(cfg.Net).To(Equal(config.DefaultNet))
	})

	It("reports broken files", func() {
		_, err := config.Load(writeConfig(`timeout = "forever"`), config.Default())
		Expect(err).To(MatchError(ContainSubstring("could not load config")))
		_, err = config.Load(filepath.Join(tmpdir, "missing.toml"), config.Default())
		Expect(err).To(HaveOccurred())
	})

	It("marshals durations", func() {
		Expect(config.Duration{1500 * time.Millisecond}.MarshalText()).To(Equal([]byte("1.5s")))
	})

	DescribeTable("rejects invalid settings",
		func(mutate func(*config.Config), problem string) {
			cfg := config.Default()
			mutate(&cfg)
			Expect(cfg.Validate()).To(MatchError(ContainSubstring(problem)))
		},
		Entry(nil, func(c *config.Config) { c.Workers = 0 }, "workers must be in 1..1000"),
		Entry(nil, func(c *config.Config) { c.Workers = 1001 }, "workers must be in 1..1000"),
		Entry(nil, func(c *config.Config) { c.Server = "" }, "DNS server must not be empty"),
		Entry(nil, func(c *config.Config) { c.Timeout.Duration = 0 }, "timeout must be positive"),
		Entry(nil, func(c *config.Config) { c.Retries = -1 }, "retries must not be negative"),
		Entry(nil, func(c *config.Config) { c.Rate = -1 }, "rate must not be negative"),
		Entry(nil, func(c *config.Config) { c.MaxDepth = 0 }, "max depth must be at least 1"),
		Entry(nil, func(c *config.Config) { c.Net = "sctp" }, "DNS transport must be either udp or tcp"),
		Entry(nil, func(c *config.Config) { c.NetNS = "/proc/1/ns/net"; c.Container = "foo" }, "mutually exclusive"),
	)

	It("reports all problems at once", func() {
		cfg := config.Default()
		cfg.Workers = 0
		cfg.Net = "quic"
		err := cfg.Validate()
		Expect(err).To(MatchError(ContainSubstring("workers")))
		Expect(err).To(MatchError(ContainSubstring("transport")))
	})

})
