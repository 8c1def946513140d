// Command collexport lists collections and writes bulk CSV archives without
// going through the HTTP server.
//
//	collexport [-uri URI] [-db NAME] [-tls] list
//	collexport [-uri URI] [-db NAME] [-tls] export [-o DIR] [collection...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"docdb-dashboard/internal/dashboard"
	mongodbpersistence "docdb-dashboard/internal/dashboard/adapter/persistence/mongodb"
	"docdb-dashboard/internal/dashboard/config"
	"docdb-dashboard/internal/dashboard/usecase"
	"docdb-dashboard/internal/shared/database"
	"docdb-dashboard/internal/shared/logger"

	"github.com/joho/godotenv"
	"github.com/vbauerster/mpb/v8"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	uri      string
	database string
	tls      bool
	logLevel string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		notifyMsg(stderr, "error", err.Error())
		return exitError
	}

	opts := options{
		uri:      cfg.Mongo.ConnectionURI(),
		database: cfg.Mongo.Database,
		tls:      cfg.Mongo.SSL,
		logLevel: "warn",
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		opts.logLevel = lvl
	}

	fs := flag.NewFlagSet("collexport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.uri, "uri", opts.uri, "MongoDB connection URI")
	fs.StringVar(&opts.database, "db", opts.database, "database name")
	fs.BoolVar(&opts.tls, "tls", opts.tls, "enable TLS")
	fs.StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: collexport [flags] list")
		fmt.Fprintln(stderr, "       collexport [flags] export [-o DIR] [collection...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	log := logger.NewLoggerWithWriter(stderr, opts.logLevel, "text")

	settings := dashboard.PrimarySettings(cfg.Mongo)
	settings.URI = opts.uri
	settings.Database = opts.database
	settings.TLS = opts.tls

	conn := database.NewConnectionManager(settings, log)
	defer conn.Close(context.Background())
	repo := mongodbpersistence.NewCollectionRepository(conn, log)

	var cmdErr error
	switch cmd, rest := fs.Arg(0), fs.Args()[1:]; cmd {
	case "list":
		cmdErr = runList(ctx, repo, log, stdout)
	case "export":
		cmdErr = runExport(ctx, repo, log, rest, stdout, stderr)
	default:
		notifyMsg(stderr, "error", fmt.Sprintf("unknown command %q", cmd))
		fs.Usage()
		return exitUsage
	}

	if cmdErr != nil {
		if errors.Is(cmdErr, flag.ErrHelp) || errors.Is(cmdErr, errUsage) {
			return exitUsage
		}
		notifyMsg(stderr, "error", cmdErr.Error())
		return exitError
	}
	return exitOK
}

var errUsage = errors.New("usage")

func runList(ctx context.Context, repo *mongodbpersistence.CollectionRepository, log logger.Logger, stdout io.Writer) error {
	uc := usecase.NewDashboardUsecase(usecase.Dependencies{Primary: repo, Logger: log})

	collections, err := uc.ListCollectionsWithStats(ctx)
	if err != nil {
		return err
	}
	return renderCollections(stdout, collections)
}

func runExport(ctx context.Context, repo *mongodbpersistence.CollectionRepository, log logger.Logger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outDir := fs.String("o", ".", "directory the archive is written to")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	names := fs.Args()
	if len(names) == 0 {
		all, err := repo.ListCollections(ctx)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			notifyMsg(stderr, "warning", "database has no collections; nothing to export")
			return nil
		}
		names = all
	}
	names, err := usecase.BulkExportRequest{Collections: names}.Names()
	if err != nil {
		return err
	}

	progress := mpb.NewWithContext(ctx, mpb.WithOutput(stderr), mpb.WithWidth(48))
	bar := startBar(progress, "collections", int64(len(names)))

	uc := usecase.NewDashboardUsecase(usecase.Dependencies{
		Primary: repo,
		Logger:  log,
		Progress: func(collection string, err error) {
			bar.Increment()
		},
	})

	archive, err := uc.ExportCollectionsZip(ctx, usecase.BulkExportRequest{Collections: names})
	if err != nil {
		bar.Abort(false)
		progress.Wait()
		return err
	}
	progress.Wait()

	if archive.Failed.HasFailures() {
		for _, f := range archive.Failed.Failures {
			notifyMsg(stderr, "warning", fmt.Sprintf("skipped %s: %v", f.Collection, f.Err))
		}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(*outDir, archive.FileName)
	if err := os.WriteFile(path, archive.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	notifyMsg(stdout, "success", fmt.Sprintf("wrote %s (%d collections, %d bytes)", path, len(archive.Included), len(archive.Data)))
	return nil
}
