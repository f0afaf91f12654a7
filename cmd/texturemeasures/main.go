package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"texturemeasures/internal/logger"
	"texturemeasures/pkg/config"
	"texturemeasures/pkg/grayimage"
	"texturemeasures/pkg/report"
	"texturemeasures/pkg/sampler"
	"texturemeasures/pkg/visualization"
)

// exitPartial is returned when the batch finished but some samples failed.
const exitPartial = 2

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line arguments
	configPath := flag.String("config", "texturemeasures.yaml", "YAML configuration file (defaults are used if missing)")
	imagePath := flag.String("image", "", "Image to analyse (PNG, JPEG, GIF, TIFF or BMP)")
	samplesPath := flag.String("samples", "", "YAML file listing the labelled sample points")
	outputPath := flag.String("output", "", "Report file; \"-\" writes to stdout (overrides config)")
	appendOutput := flag.Bool("append", false, "Append to the report file instead of replacing it (overrides config)")
	radius := flag.Int("radius", 0, "Window radius in pixels (overrides config)")
	numCores := flag.Int("cores", 0, "Number of regions measured concurrently (overrides config)")
	overlayPath := flag.String("overlay", "", "Write an image with the analysed windows outlined (overrides config)")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save every GLCM as an image (overrides config)")
	intermediaryDir := flag.String("intermediary-dir", "", "Directory for GLCM images (overrides config)")
	writeConfig := flag.String("write-config", "", "Write the default configuration to this path and exit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			logger.WithError(err).Error("failed to write configuration")
			return 1
		}
		fmt.Printf("Default configuration written to %s\n", *writeConfig)
		return 0
	}

	// Validate inputs
	if *imagePath == "" || *samplesPath == "" {
		flag.Usage()
		return 1
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Error("failed to load configuration")
		return 1
	}

	// Command line flags override the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Output.File = *outputPath
		case "append":
			cfg.Output.Append = *appendOutput
		case "radius":
			cfg.Sampling.Radius = *radius
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "overlay":
			cfg.Output.Overlay = *overlayPath
		case "save-intermediary":
			cfg.Output.SaveIntermediaryResults = *saveIntermediary
		case "intermediary-dir":
			cfg.Output.IntermediaryDir = *intermediaryDir
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})
	if cfg.Output.Verbose {
		logger.SetLevel("debug")
	}

	params, err := cfg.Params()
	if err != nil {
		logger.WithError(err).Error("invalid configuration")
		return 1
	}

	img, err := grayimage.Load(*imagePath)
	if err != nil {
		logger.WithError(err).WithField("image", *imagePath).Error("failed to load image")
		return 1
	}

	sf, err := config.LoadSamples(*samplesPath)
	if err != nil {
		logger.WithError(err).WithField("samples", *samplesPath).Error("failed to load samples")
		return 1
	}
	if sf.Image != "" && sf.Image != *imagePath {
		logger.WithField("samples_image", sf.Image).Warn("samples were placed on a different image")
	}

	features := params.Extractor.FeatureSet()
	var writer *report.TSVWriter
	if cfg.Output.File == "" || cfg.Output.File == "-" {
		writer = report.NewTSVWriter(os.Stdout, params.Combinations, features)
	} else {
		writer, err = report.OpenFile(cfg.Output.File, cfg.Output.Append, params.Combinations, features)
		if err != nil {
			logger.WithError(err).Error("failed to open report")
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.WithFields(logrus.Fields{
		"samples":      len(sf.Samples),
		"combinations": len(params.Combinations),
		"features":     features.String(),
		"workers":      params.NumWorkers,
	}).Info("measuring texture")

	s := sampler.NewSampler(params)
	startTime := time.Now()
	summary, err := s.Process(ctx, img, sf.Samples, writer)
	if cerr := writer.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		logger.WithError(err).Error("texture measurement failed")
		return 1
	}

	if cfg.Output.Overlay != "" {
		overlay := visualization.DrawMarkers(img, sf.Samples, params.Radius)
		if err := visualization.SaveImage(overlay, cfg.Output.Overlay); err != nil {
			logger.WithError(err).Warn("failed to save overlay")
		}
	}

	printSummary(os.Stderr, summary, time.Since(startTime), cfg)

	if summary.Failed > 0 {
		return exitPartial
	}
	return 0
}

func printSummary(w io.Writer, summary *sampler.Summary, elapsed time.Duration, cfg *config.Config) {
	fmt.Fprintf(w, "\nMeasured %d sample(s) in %.2f seconds\n", summary.Measured, elapsed.Seconds())
	if cfg.Output.File != "" && cfg.Output.File != "-" {
		fmt.Fprintf(w, "Report written to: %s\n", cfg.Output.File)
	}
	if cfg.Output.SaveIntermediaryResults {
		fmt.Fprintf(w, "GLCM images saved to: %s\n", cfg.Output.IntermediaryDir)
	}
	if cfg.Output.Overlay != "" {
		fmt.Fprintf(w, "Overlay saved to: %s\n", cfg.Output.Overlay)
	}
	if summary.Failed > 0 {
		fmt.Fprintf(w, "\n%d sample(s) failed:\n", summary.Failed)
		for _, e := range summary.Errors {
			fmt.Fprintf(w, "- %v\n", e)
		}
	}
}
