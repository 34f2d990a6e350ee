package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	clustering "github.com/exo-200/clustering_go/pkg"
	"github.com/google/uuid"
	sqlx "github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var configuration clustering.Configuration

var (
	logger         Logger
	logLevel       = new(slog.LevelVar)
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: logLevel,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFilename string

	root := &cobra.Command{
		Use:          "clustering",
		Short:        "Build charge and scintillation clusters from EXO-200 signals",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(configFilename)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClustering(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&configFilename, "config", "", "Configuration file path (JSON or YAML)")
	root.AddCommand(newRunCmd(), newDriftCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Cluster every event of the input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClustering(cmd.Context())
		},
	}
}

func newDriftCmd() *cobra.Command {
	var seconds int64
	var monteCarlo bool

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Print the drift velocity and collection time used at a given time",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, closeSource, err := openCalibrationSource()
			if err != nil {
				return err
			}
			defer closeSource()

			resolver := clustering.NewDriftResolver(configuration, source)
			state := resolver.Resolve(clustering.EventHeader{TriggerSeconds: seconds, IsMonteCarloEvent: monteCarlo})
			printDriftState(cmd.OutOrStdout(), state)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seconds, "time", time.Now().Unix(), "Unix time of the event")
	cmd.Flags().BoolVar(&monteCarlo, "mc", false, "Treat the event as Monte-Carlo")
	return cmd
}

func setup(configFilename string) error {
	var err error
	configuration, err = LoadConfiguration(configFilename)
	if err != nil {
		return fmt.Errorf("Error reading configuration file: %w", err)
	}
	clustering.SetConfiguration(configuration)
	clustering.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 1 {
		logLevel.Set(slog.LevelDebug)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}
	return nil
}

// openCalibrationSource picks the sqlite snapshot when one is configured,
// then the calibration database unless disabled.
func openCalibrationSource() (clustering.CalibrationSource, func(), error) {
	var dbConn *sqlx.DB
	var err error
	switch {
	case configuration.CalibSnapshot != "":
		dbConn, err = clustering.OpenCalibrationSnapshot(configuration.CalibSnapshot)
	case configuration.NoDB:
		return nil, func() {}, nil
	default:
		dbConn, err = clustering.ConnectToDatabase(configuration)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("Error connection to database: %w", err)
	}
	return clustering.NewCalibrationStore(dbConn), func() { dbConn.Close() }, nil
}

func runClustering(ctx context.Context) error {
	source, closeSource, err := openCalibrationSource()
	if err != nil {
		return err
	}
	defer closeSource()

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		return fmt.Errorf("Error opening file: %w", err)
	}
	defer file.Close()

	var writer EventWriter
	if configuration.WriteData {
		jobID := uuid.NewString()
		logger.Info(fmt.Sprintf("Job ID: %s", jobID), "main")
		hdf5Writer, err := clustering.NewWriter(configuration.FileOut, jobID, configuration.WriteDebug)
		if err != nil {
			return fmt.Errorf("Error creating output file: %w", err)
		}
		defer func() {
			if err := hdf5Writer.Close(); err != nil {
				logger.Error(fmt.Errorf("error closing output file: %w", err).Error())
			}
		}()
		writer = hdf5Writer
	}

	module := clustering.NewModule(configuration, clustering.NewDriftResolver(configuration, source))
	summary := NewSummary()

	start := time.Now()
	err = runPipeline(ctx, NewFileReader(file), module, writer, summary)
	summary.Print(os.Stdout, time.Since(start))
	return err
}
