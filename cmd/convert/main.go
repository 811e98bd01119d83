// Command convert runs one conversion from the command line: it reads a
// storefront order export CSV and writes the shipping manifests, the domestic
// label sheet, and the summary report to an output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mittenshop/fulfillment/internal/application/pipeline"
	"github.com/mittenshop/fulfillment/internal/infrastructure/labels"
	"github.com/mittenshop/fulfillment/internal/infrastructure/logger"
	"github.com/mittenshop/fulfillment/internal/infrastructure/storage"
)

func main() {
	var (
		input    = flag.String("input", "", "path to the storefront order export CSV (required)")
		outDir   = flag.String("out", "output", "directory for manifests, labels, and the report")
		noLabels = flag.Bool("no-labels", false, "skip domestic label rendering")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(*input, *outDir, *noLabels, log); err != nil {
		log.Error("conversion failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(input, outDir string, noLabels bool, log *zap.Logger) error {
	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening %s: %w", input, err)
	}
	defer file.Close()

	ctx := context.Background()
	service := pipeline.NewService(log)

	result, err := service.Convert(ctx, file)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w.Error())
	}
	if result.WarningsTruncated {
		fmt.Fprintf(os.Stderr, "warning: %d further warnings suppressed\n",
			result.TotalWarnings-len(result.Warnings))
	}

	store, err := storage.NewLocalStorage(outDir)
	if err != nil {
		return err
	}

	var sink pipeline.LabelSink
	var renderer *labels.TemplateRenderer
	if !noLabels {
		renderer, err = labels.NewTemplateRenderer("")
		if err != nil {
			return err
		}
		sink = renderer
	}

	locations, err := service.Distribute(ctx, result, store, sink)
	if err != nil {
		return err
	}

	if renderer != nil && renderer.Count() > 0 {
		path := filepath.Join(outDir, result.RunID.String(), "labels.txt")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, renderer.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing labels: %w", err)
		}
		fmt.Println("labels:       ", path)
	}
	if locations.InternationalLocation != "" {
		fmt.Println("international:", locations.InternationalLocation)
	}
	if locations.USLocation != "" {
		fmt.Println("us:           ", locations.USLocation)
	}

	fmt.Println()
	fmt.Print(result.Report)
	return nil
}
