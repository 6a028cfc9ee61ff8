// Command pdfsheet prints the ruled tables of the first pages of a PDF, one
// row per line with every cell followed by "|".
//
// Usage:
//
//	pdfsheet [flags] [file.pdf]
//	pdfsheet lookup -group NAME -column NAME [-table N] [-line N] [flags] [file.pdf]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pyhub-apps/pdfsheet/internal/config"
	"github.com/pyhub-apps/pdfsheet/internal/driver"
	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	lookup := len(args) > 0 && args[0] == "lookup"
	if lookup {
		args = args[1:]
	}

	fs := flag.NewFlagSet("pdfsheet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configFile = fs.String("config", "", "YAML configuration file")
		envFile    = fs.String("env-file", ".env", "dotenv file with PDFSHEET_* variables")
		pages      = fs.Int("pages", 0, "number of pages to process")
		format     = fs.String("format", "", "output format (pipe, json)")
		exhausted  = fs.String("on-exhausted", "", "when the document has fewer pages: fail or stop")
		password   = fs.String("password", "", "user password of an encrypted document")
		workers    = fs.Int("workers", 0, "pages extracted concurrently")
		logLevel   = fs.String("log-level", "", "log level (debug, info, warn, error)")
		noGeometry = fs.Bool("no-geometry", false, "take rulings from the text backend only")
	)
	var query driver.Query
	if lookup {
		fs.StringVar(&query.Group, "group", "", "table group name")
		fs.IntVar(&query.Table, "table", 0, "table index within the group")
		fs.StringVar(&query.Column, "column", "", "column name, matched fuzzily")
		fs.IntVar(&query.Line, "line", 0, "record line within the table")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	lookupEnv, err := config.EnvLookup(*envFile)
	if err != nil {
		fmt.Fprintf(stderr, "pdfsheet: %v\n", err)
		return 2
	}
	cfg, err := config.Load(*configFile, lookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "pdfsheet: %v\n", err)
		return 2
	}

	// flags given on the command line override file and environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pages":
			cfg.PageLimit = *pages
			query.Pages = *pages
		case "format":
			cfg.Format = config.Format(*format)
		case "on-exhausted":
			cfg.Exhaustion = pdf.Exhaustion(*exhausted)
		case "password":
			cfg.Password = *password
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		case "no-geometry":
			cfg.NoGeometry = *noGeometry
		}
	})
	if fs.NArg() > 0 {
		cfg.Path = fs.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "pdfsheet: %v\n", err)
		return driver.ExitCode(&driver.Error{Kind: driver.KindConfig, Err: err})
	}

	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "pdfsheet: %v\n", err)
		return 2
	}
	defer logger.Sync()

	if lookup {
		value, err := driver.Lookup(ctx, cfg, query, driver.WithLogger(logger))
		if err != nil {
			logger.Error("lookup failed", zap.String("path", cfg.Path), zap.Error(err))
			return driver.ExitCode(err)
		}
		fmt.Fprintln(stdout, driver.CleanText(value))
		return 0
	}

	if err := driver.Run(ctx, cfg, stdout, driver.WithLogger(logger)); err != nil {
		logger.Error("extraction failed", zap.String("path", cfg.Path), zap.Error(err))
		return driver.ExitCode(err)
	}
	return 0
}

// newLogger builds a production JSON logger writing to w
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core), nil
}
