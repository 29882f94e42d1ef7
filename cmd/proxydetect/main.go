// Package main provides the proxydetect entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rennerdo30/proxydetect/internal/config"
	"github.com/rennerdo30/proxydetect/internal/detect"
	"github.com/rennerdo30/proxydetect/internal/logging"
	"github.com/rennerdo30/proxydetect/internal/metrics"
	"github.com/rennerdo30/proxydetect/internal/sysproxy"
	"github.com/rennerdo30/proxydetect/internal/version"
)

type options struct {
	configFile  string
	sources     []string
	format      string
	metricsFile string
	logLevel    string

	systemSources func() detect.Sources
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(detect.SystemSources)
}

func newRootCmdWith(systemSources func() detect.Sources) *cobra.Command {
	opts := &options{systemSources: systemSources}

	rootCmd := &cobra.Command{
		Use:   "proxydetect",
		Short: "Detect the proxy configuration that applies to this machine",
		Long: `proxydetect walks the configured proxy sources (overrides, policies, OS
settings and browser settings) in precedence order and prints the first
configuration found.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file path")
	flags.StringSliceVarP(&opts.sources, "source", "s", nil, "restrict detection to these sources, in order")
	flags.StringVarP(&opts.format, "format", "o", "text", "output format: text, json or yaml")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	flags.StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(
		newVersionCmd(opts),
		newValidateCmd(opts),
		newSourcesCmd(opts),
		newResolveCmd(opts),
		newConfigCmd(),
		newOverrideCmd(opts),
	)
	return rootCmd
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "text" {
				fmt.Fprintln(cmd.OutOrStdout(), version.Full())
				return nil
			}
			return encode(cmd.OutOrStdout(), opts.format, version.GetInfo())
		},
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configFile == "" {
				return fmt.Errorf("no config file given (use --config or -c)")
			}
			if _, err := loadConfig(opts); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
}

func newSourcesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the proxy sources in precedence order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			chain, err := buildChain(cfg, opts, nil)
			if err != nil {
				return err
			}
			for i, s := range chain.Sources() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, s)
			}
			return nil
		},
	}
}

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url>",
		Short: "Show how a request to url would be routed",
		Long: `Show how a request to url would be routed, in PAC result syntax:
DIRECT, PROXY host:port, PAC <url> or AUTO. PAC scripts are not evaluated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := url.Parse(args[0])
			if err != nil || target.Host == "" {
				return fmt.Errorf("invalid url %q", args[0])
			}
			res, found, err := detectOnce(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), route(res.Config, found, target))
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	var output string
	var force bool

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a configuration file with the default source order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(output); err == nil {
				if !force {
					return fmt.Errorf("file %s already exists (use --force to overwrite)", output)
				}
				backup, err := config.Backup(output)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backed up existing file to %s\n", backup)
			}
			cfg := config.DefaultConfig()
			if err := config.Save(output, &cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated configuration: %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "O", "proxydetect.yaml", "output file path")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func newOverrideCmd(opts *options) *cobra.Command {
	var server, pac, bypass string
	var autoDetect bool

	overrideCmd := &cobra.Command{
		Use:   "override",
		Short: "Manage the product proxy override",
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store a product proxy override",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			override := detect.ProxyConfig{AutoDetect: autoDetect, AutoConfigURL: pac}
			if server != "" {
				override.HTTPProxy, override.HTTPSProxy, err = detect.ParseProxyServer(server)
				if err != nil {
					return fmt.Errorf("invalid --server %q: %w", server, err)
				}
				override.Bypass = bypass
			}
			if err := sysproxy.New(cfg.OverrideFile).SetOverride(override); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Override set: %s\n", override)
			return nil
		},
	}
	setCmd.Flags().StringVar(&server, "server", "", "proxy server, host:port or http=host:port;https=host:port")
	setCmd.Flags().StringVar(&pac, "pac", "", "proxy auto-config URL")
	setCmd.Flags().BoolVar(&autoDetect, "auto-detect", false, "enable automatic proxy discovery")
	setCmd.Flags().StringVar(&bypass, "bypass", "", "hosts that bypass the proxy server")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the product proxy override",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := sysproxy.New(cfg.OverrideFile).ClearOverride(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Override cleared")
			return nil
		},
	}

	overrideCmd.AddCommand(setCmd, clearCmd)
	return overrideCmd
}

func loadConfig(opts *options) (config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configFile != "" {
		if err := config.Load(opts.configFile, &cfg); err != nil {
			return cfg, err
		}
	}
	if len(opts.sources) > 0 {
		cfg.Sources = opts.sources
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.metricsFile != "" {
		cfg.Metrics = config.MetricsConfig{Enabled: true, TextfilePath: opts.metricsFile}
	}
	return cfg, cfg.Validate()
}

func buildChain(cfg config.Config, opts *options, observer detect.Observer) (*detect.Chain, error) {
	detectors, err := detect.NewDetectors(cfg.ApplySources(opts.systemSources()), cfg.Sources)
	if err != nil {
		return nil, err
	}
	chainOpts := []detect.ChainOption{detect.WithUserFamilySkip(cfg.SkipUserSourcesWithoutContext)}
	if observer != nil {
		chainOpts = append(chainOpts, detect.WithObserver(observer))
	}
	return detect.NewChain(detectors, chainOpts...), nil
}

// detectOnce runs the chain. found is false when no source had a
// configuration, which is not an error.
func detectOnce(ctx context.Context, opts *options) (detect.Result, bool, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return detect.Result{}, false, fmt.Errorf("load config: %w", err)
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return detect.Result{}, false, fmt.Errorf("setup logging: %w", err)
	}

	var m *metrics.Metrics
	var observer detect.Observer
	if cfg.Metrics.Enabled {
		m = metrics.New()
		observer = m
	}

	chain, err := buildChain(cfg, opts, observer)
	if err != nil {
		return detect.Result{}, false, err
	}

	res, err := chain.Detect(ctx)
	found := err == nil
	if err != nil && !errors.Is(err, detect.ErrNoProxyConfig) {
		return detect.Result{}, false, err
	}

	if m != nil {
		m.RecordResult(res, found)
		if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logging.Warn("Failed to write metrics", "path", cfg.Metrics.TextfilePath, "error", err)
		}
	}
	return res, found, nil
}

func runDetect(cmd *cobra.Command, opts *options) error {
	res, found, err := detectOnce(cmd.Context(), opts)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), opts.format, res, found)
}

func printResult(w io.Writer, format string, res detect.Result, found bool) error {
	if format != "text" {
		return encode(w, format, struct {
			Found         bool `json:"found" yaml:"found"`
			detect.Result `yaml:",inline"`
		}{found, res})
	}

	if !found {
		_, err := fmt.Fprintln(w, "No proxy configuration detected")
		return err
	}
	fmt.Fprintf(w, "Source:      %s\n", res.Source)
	fmt.Fprintf(w, "Mode:        %s\n", res.Config.Mode())
	if res.Config.AutoDetect {
		fmt.Fprintf(w, "Auto-detect: true\n")
	}
	if res.Config.AutoConfigURL != "" {
		fmt.Fprintf(w, "PAC URL:     %s\n", res.Config.AutoConfigURL)
	}
	if res.Config.HTTPProxy != "" {
		fmt.Fprintf(w, "HTTP proxy:  %s\n", res.Config.HTTPProxy)
	}
	if res.Config.HTTPSProxy != "" {
		fmt.Fprintf(w, "HTTPS proxy: %s\n", res.Config.HTTPSProxy)
	}
	if res.Config.Bypass != "" {
		fmt.Fprintf(w, "Bypass:      %s\n", res.Config.Bypass)
	}
	return nil
}

func encode(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// route renders the routing decision for target in PAC result syntax.
func route(cfg detect.ProxyConfig, found bool, target *url.URL) string {
	if !found {
		return "DIRECT"
	}
	switch cfg.Mode() {
	case detect.ModeAutoDetect:
		return "AUTO"
	case detect.ModePAC:
		return "PAC " + cfg.AutoConfigURL
	}
	if p := cfg.ProxyForURL(target); p != "" {
		return "PROXY " + p
	}
	return "DIRECT"
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	logging.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
