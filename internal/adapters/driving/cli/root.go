// Package cli implements the command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karmanotes/pipeline/internal/adapters/driven/blobstore"
	configfile "github.com/karmanotes/pipeline/internal/adapters/driven/config/file"
	"github.com/karmanotes/pipeline/internal/adapters/driven/gdrive"
	"github.com/karmanotes/pipeline/internal/adapters/driven/queue"
	"github.com/karmanotes/pipeline/internal/adapters/driven/search/fts"
	"github.com/karmanotes/pipeline/internal/adapters/driven/storage/sqlite"
	"github.com/karmanotes/pipeline/internal/adapters/driving/httpapi"
	"github.com/karmanotes/pipeline/internal/converters"
	"github.com/karmanotes/pipeline/internal/converters/html"
	"github.com/karmanotes/pipeline/internal/converters/plaintext"
	"github.com/karmanotes/pipeline/internal/core/ports/driving"
	"github.com/karmanotes/pipeline/internal/core/services"
	"github.com/karmanotes/pipeline/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile string
	verbose bool
)

// Services wired by initApp. Commands guard on nil so they can be
// tested with fakes.
var (
	app            *application
	intakeService  driving.IntakeService
	searchService  driving.SearchService
	importService  driving.Importer
	convertService driving.ConversionOrchestrator
)

var rootCmd = &cobra.Command{
	Use:   "karmanotes",
	Short: "Course note ingestion pipeline",
	Long: `karmanotes ingests uploaded course documents, converts them into
searchable notes in the background, and serves search over the result.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	PersistentPostRun: closeApp,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.karmanotes/config.toml)")
}

// application holds the wired adapter graph for the lifetime of one
// command.
type application struct {
	cfg    *configfile.Config
	store  *sqlite.Store
	queue  *queue.InProcess
	server *httpapi.Server
}

func initApp(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	// Commands that never touch the pipeline skip the wiring.
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}
	// Already wired, or a test installed fakes.
	if app != nil || intakeService != nil {
		return nil
	}

	cfg, err := configfile.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	engine, err := fts.NewEngine(store.DB())
	if err != nil {
		store.Close()
		return fmt.Errorf("opening search index: %w", err)
	}

	registry := converters.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(html.New())
	if cfg.Drive.CredentialsFile != "" {
		rich, err := gdrive.New(context.Background(), cfg.Drive.CredentialsFile, cfg.Drive.TokenFile)
		if err != nil {
			store.Close()
			return fmt.Errorf("configuring conversion service: %w", err)
		}
		registry.Register(rich)
	} else {
		logger.Debug("No drive credentials configured; rich formats disabled")
	}

	blobs := blobstore.New(cfg.Storage.ServiceURL)

	conversion := services.NewConversionService(
		store.RawDocumentStore(), store.NoteStore(), blobs, registry, engine)
	jobQueue := queue.New(conversion, queue.Options{
		Workers:     cfg.Queue.Workers,
		MaxAttempts: cfg.Queue.MaxAttempts,
		BackoffBase: cfg.Queue.BackoffBase,
	})
	intake := services.NewIntakeService(
		store.RawDocumentStore(), store.CourseStore(), store.LicenseStore(), registry, jobQueue)
	search := services.NewSearchService(engine, store.NoteStore())
	importer := services.NewImportService(
		store.CourseStore(), store.LicenseStore(), store.RawDocumentStore(),
		store.NoteStore(), blobs, conversion, engine)

	app = &application{
		cfg:    cfg,
		store:  store,
		queue:  jobQueue,
		server: httpapi.NewServer(intake, search),
	}
	intakeService = intake
	searchService = search
	importService = importer
	convertService = conversion
	return nil
}

func closeApp(_ *cobra.Command, _ []string) {
	if app == nil {
		return
	}
	if err := app.store.Close(); err != nil {
		logger.Warn("Failed to close store: %v", err)
	}
	app = nil
}
