package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kylerisse/cmangraph/pkg/cman"
	"github.com/kylerisse/cmangraph/pkg/config"
	"github.com/kylerisse/cmangraph/pkg/datasource"
	"github.com/kylerisse/cmangraph/pkg/perfdata"
	"github.com/kylerisse/cmangraph/pkg/rrd"
	"github.com/kylerisse/cmangraph/pkg/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	v := viper.New()

	root := &cobra.Command{
		Use:   "cmangraph",
		Short: "rrdtool graph definitions for check_oracle_cman",
		Long: `cmangraph turns check_oracle_cman performance data into rrdtool graph
definitions: one current-connections graph and one connection-rate graph
per CMAN handler.

Examples:
  cmangraph render --host db01 --service CMAN "'cmgw001_current'=3;204.80;243.20;0;256"
  cmangraph draw --host db01 --service CMAN --graph-dir /srv/graphs - < perfdata.txt
  CMANGRAPH_RRD_DIR=/var/rrd cmangraph serve --port 1982`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return nil
			}
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config %s: %w", configFile, err)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("rrd-dir", "", "directory holding the RRD files")
	pf.String("storage", "", "RRD storage layout: single or multiple")
	pf.String("check-command", "", "check command named in the graph watermark")
	if err := bindFlags(v, pf, map[string]string{
		config.KeyLogLevel:     "log-level",
		config.KeyRRDDir:       "rrd-dir",
		config.KeyStorage:      "storage",
		config.KeyCheckCommand: "check-command",
	}); err != nil {
		panic(err)
	}

	config.SetDefaults(v)
	config.BindEnv(v)

	root.AddCommand(newRenderCmd(v), newDrawCmd(v), newServeCmd(v))
	return root
}

// bindFlags ties viper keys to flags; a flag only overrides when set.
// Subcommands bind in PreRunE because several of them share a key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// loadConfig resolves configuration and builds the logger.
func loadConfig(v *viper.Viper) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return cfg, logger, nil
}

// readPerfdata takes perfdata from the argument, or from stdin when the
// argument is "-" or missing.
func readPerfdata(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read perfdata from stdin: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// buildGraphs runs the whole pipeline for one service.
func buildGraphs(cfg config.Config, logger *logrus.Logger, host string, service string, perf string) (cman.Graphs, error) {
	samples, err := perfdata.Parse(perf)
	if err != nil {
		return nil, fmt.Errorf("invalid perfdata: %w", err)
	}
	records := datasource.FromSamples(host, service, samples, datasource.Options{
		RRDDir:  cfg.RRDDir,
		Storage: cfg.Storage,
	})
	logger.Debugf("Parsed %d data source(s) for %s/%s.", len(records), host, service)
	return cman.NewBuilder(cfg.CheckCommand, logger).Build(records), nil
}

func newRenderCmd(v *viper.Viper) *cobra.Command {
	var host, service string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "render [PERFDATA|-]",
		Short: "Print graph definitions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(v)
			if err != nil {
				return err
			}
			perf, err := readPerfdata(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			graphs, err := buildGraphs(cfg, logger, host, service, perf)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), graphs)
			}
			return writeText(cmd.OutOrStdout(), graphs)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "host name (required)")
	cmd.Flags().StringVar(&service, "service", "", "service description (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	cmd.MarkFlagRequired("host")
	cmd.MarkFlagRequired("service")
	return cmd
}

func newDrawCmd(v *viper.Viper) *cobra.Command {
	var host, service string

	cmd := &cobra.Command{
		Use:   "draw [PERFDATA|-]",
		Short: "Draw graphs to PNG files with rrdtool",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(v)
			if err != nil {
				return err
			}
			perf, err := readPerfdata(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			graphs, err := buildGraphs(cfg, logger, host, service, perf)
			if err != nil {
				return err
			}

			drawer, err := rrd.NewDrawer(cfg.GraphDir, cfg.TimeLengths, cfg.Width, cfg.Height, logger)
			if err != nil {
				return err
			}

			failed := 0
			for _, g := range graphs.Sorted() {
				files, err := drawer.Draw(cmd.Context(), host, service, g)
				if err != nil {
					failed++
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d graph(s) failed to draw", failed, len(graphs))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "host name (required)")
	cmd.Flags().StringVar(&service, "service", "", "service description (required)")
	cmd.Flags().String("graph-dir", "", "directory to write images under")
	cmd.Flags().StringSlice("time-lengths", nil, "time ranges to draw, e.g. 4h,1w")
	cmd.Flags().Int("width", 0, "graph width in pixels")
	cmd.Flags().Int("height", 0, "graph height in pixels")
	cmd.MarkFlagRequired("host")
	cmd.MarkFlagRequired("service")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return bindFlags(v, cmd.Flags(), map[string]string{
			config.KeyGraphDir:    "graph-dir",
			config.KeyTimeLengths: "time-lengths",
			config.KeyWidth:       "width",
			config.KeyHeight:      "height",
		})
	}
	return cmd
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	var draw bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graph definitions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(v)
			if err != nil {
				return err
			}

			var drawer *rrd.Drawer
			if draw {
				drawer, err = rrd.NewDrawer(cfg.GraphDir, cfg.TimeLengths, cfg.Width, cfg.Height, logger)
				if err != nil {
					return err
				}
			}

			srv, err := server.NewServer(cfg, drawer, logger)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			srv.Start()

			// Graceful shutdown
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running. Press Ctrl+C to stop.")
			<-stop
			logger.Info("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}

	cmd.Flags().String("port", "", "listen port")
	cmd.Flags().String("graph-dir", "", "directory to write and serve images from")
	cmd.Flags().Float64("rate-limit", 0, "requests per second")
	cmd.Flags().Int("rate-burst", 0, "request burst size")
	cmd.Flags().BoolVar(&draw, "draw", false, "allow draw=true requests (needs rrdtool)")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return bindFlags(v, cmd.Flags(), map[string]string{
			config.KeyListenPort: "port",
			config.KeyGraphDir:   "graph-dir",
			config.KeyRateLimit:  "rate-limit",
			config.KeyRateBurst:  "rate-burst",
		})
	}
	return cmd
}
