// Package main provides the entry point for the geodatum converter.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobrunner/geodatum/internal/app"
	"github.com/jobrunner/geodatum/internal/config"
	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/geodesy"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfgFile string

// Reference point of the default pipeline, packed DDD.MMSSsss.
const (
	defaultLatitude  = 29.41149626
	defaultLongitude = 121.3848571
	defaultHeight    = 16.174
)

var errChecksFailed = errors.New("pipeline checks failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "geodatum",
	Short: "geodatum - WGS84 to Gauss-Krüger datum converter",
	Long: `geodatum converts WGS84 geodetic coordinates into Gauss-Krüger plane
coordinates of a local datum (Xian80, Beijing54) through a calibrated
seven-parameter Bursa-Wolf pipeline.

Features:
  - Geodetic and Cartesian conversion on WGS84, Xian80 and Beijing54
  - Bursa-Wolf seven-parameter datum shift
  - Gauss-Krüger projection in 3 and 6 degree zones
  - Versioned pipeline catalog with control points
  - Inverse conversion from plane coordinates
  - Batch conversion and catalog hot-reload`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "geodatum %s\n", version)
		fmt.Fprintf(out, "  Commit:     %s\n", commit)
		fmt.Fprintf(out, "  Build Date: %s\n", buildDate)
	},
}

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines",
	Short: "List the pipelines in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runPipelines,
}

var inverseCmd = &cobra.Command{
	Use:   "inverse X Y [H]",
	Short: "Convert a plane point back to the source datum",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runInverse,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every pipeline against its control point and inverse",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the catalog file and re-check pipelines on every change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (json, text)")
	rootCmd.PersistentFlags().String("pipeline", "", "pipeline name (default: catalog default)")
	rootCmd.PersistentFlags().String("catalog", "", "pipeline catalog file (default: builtin)")
	rootCmd.PersistentFlags().String("input", config.InputDMS, "geodetic angle format (dms, decimal)")
	rootCmd.PersistentFlags().String("format", config.OutputText, "output format (text, json)")
	rootCmd.PersistentFlags().Int("precision", 4, "decimals for plane coordinates")
	rootCmd.PersistentFlags().Int("max-iterations", geodesy.DefaultMaxIterations, "iteration cap of the geodetic solver")
	rootCmd.PersistentFlags().Bool("metrics", false, "write Prometheus metrics to stderr on exit")

	// Conversion flags
	rootCmd.Flags().Float64("lat", defaultLatitude, "latitude")
	rootCmd.Flags().Float64("lon", defaultLongitude, "longitude")
	rootCmd.Flags().Float64("height", defaultHeight, "ellipsoidal height in meters")
	rootCmd.Flags().String("points", "", "file with one \"lat lon [height]\" per line, - for stdin")
	rootCmd.Flags().Int("concurrency", 0, "batch workers (default: GOMAXPROCS)")
	rootCmd.Flags().Bool("trace", false, "print intermediate stages")

	// Watch flags
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "settle time before reloading")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("convert.pipeline", rootCmd.PersistentFlags().Lookup("pipeline"))
	_ = viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("convert.input", rootCmd.PersistentFlags().Lookup("input"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("output.precision", rootCmd.PersistentFlags().Lookup("precision"))
	_ = viper.BindPFlag("solver.max_iterations", rootCmd.PersistentFlags().Lookup("max-iterations"))
	_ = viper.BindPFlag("metrics.enabled", rootCmd.PersistentFlags().Lookup("metrics"))
	_ = viper.BindPFlag("convert.concurrency", rootCmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("catalog.debounce", watchCmd.Flags().Lookup("debounce"))

	rootCmd.AddCommand(versionCmd, pipelinesCmd, inverseCmd, checkCmd, watchCmd)
}

func initConfig() {
	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// bootstrap loads the configuration and wires the application.
func bootstrap() (*config.Config, *app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing application: %w", err)
	}
	return cfg, application, nil
}

// flushMetrics writes the collected metrics to stderr.
func flushMetrics(application *app.App) {
	if err := application.WriteMetrics(os.Stderr); err != nil {
		application.Logger.Error("writing metrics", "error", err)
	}
}

func runConvert(cmd *cobra.Command, _ []string) error {
	cfg, application, err := bootstrap()
	if err != nil {
		return err
	}
	defer flushMetrics(application)

	ctx := cmd.Context()
	out := newPrinter(cmd.OutOrStdout(), cfg.Output)

	if path, _ := cmd.Flags().GetString("points"); path != "" {
		points, err := readPoints(cmd.InOrStdin(), path, cfg.Convert.Input)
		if err != nil {
			return err
		}
		resp, err := application.ConversionService.ConvertBatch(ctx, domain.BatchRequest{
			Pipeline: cfg.Convert.Pipeline,
			Points:   points,
		})
		if err != nil {
			return err
		}
		return out.batch(resp)
	}

	lat, _ := cmd.Flags().GetFloat64("lat")
	lon, _ := cmd.Flags().GetFloat64("lon")
	height, _ := cmd.Flags().GetFloat64("height")
	trace, _ := cmd.Flags().GetBool("trace")

	point := geodeticInput(lat, lon, height, cfg.Convert.Input)
	if err := checkRange(point); err != nil {
		return err
	}
	res, err := application.ConversionService.Convert(ctx, domain.ConversionRequest{
		Pipeline: cfg.Convert.Pipeline,
		Point:    point,
	})
	if err != nil {
		return err
	}
	return out.conversion(res, trace)
}

func runPipelines(cmd *cobra.Command, _ []string) error {
	cfg, application, err := bootstrap()
	if err != nil {
		return err
	}
	defer flushMetrics(application)

	infos := application.ConversionService.ListPipelines(cmd.Context())
	return newPrinter(cmd.OutOrStdout(), cfg.Output).pipelines(infos)
}

func runInverse(cmd *cobra.Command, args []string) error {
	cfg, application, err := bootstrap()
	if err != nil {
		return err
	}
	defer flushMetrics(application)

	values, err := parseFloats(args)
	if err != nil {
		return err
	}
	plane := domain.NewGaussPlanePoint(values[0], values[1], 0)
	if len(values) == 3 {
		plane.H = values[2]
	}

	res, err := application.ConversionService.Inverse(cmd.Context(), domain.InverseRequest{
		Pipeline: cfg.Convert.Pipeline,
		Point:    plane,
	})
	if err != nil {
		return err
	}
	return newPrinter(cmd.OutOrStdout(), cfg.Output).inverse(res, cfg.Convert.Input)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, application, err := bootstrap()
	if err != nil {
		return err
	}
	defer flushMetrics(application)

	results := application.CheckService.Check(cmd.Context())
	if err := newPrinter(cmd.OutOrStdout(), cfg.Output).checks(results); err != nil {
		return err
	}
	for _, res := range results {
		if !res.Passed {
			return errChecksFailed
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	viper.Set("catalog.watch", true)

	_, application, err := bootstrap()
	if err != nil {
		return err
	}
	defer flushMetrics(application)
	logger := application.Logger

	// Create context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := application.Start(ctx); err != nil {
		return err
	}
	logger.Info("watching catalog",
		"path", application.Catalog.Source(),
		"pipelines", application.Catalog.Count(),
		"healthy", application.CheckService.IsHealthy(ctx),
	)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}

// geodeticInput builds a point from user input in the configured angle format.
func geodeticInput(lat, lon, height float64, format string) domain.GeodeticPoint {
	if format == config.InputDMS {
		lat = geodesy.DMSToDecimalDegrees(lat)
		lon = geodesy.DMSToDecimalDegrees(lon)
	}
	return domain.NewGeodeticPoint(lat, lon, height)
}

// checkRange rejects user input outside [-90, 90] latitude or [-180, 180]
// longitude.
func checkRange(p domain.GeodeticPoint) error {
	if p.InRange() {
		return nil
	}
	return &domain.ParameterError{
		Field:      "latitude/longitude",
		Value:      p,
		Constraint: "latitude in [-90, 90], longitude in [-180, 180]",
		Err:        domain.ErrInvalidCoordinate,
	}
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	// Results go to stdout, diagnostics to stderr.
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
