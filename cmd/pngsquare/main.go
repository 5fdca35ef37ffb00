package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/mkrogh/pngsquare/config"
	"github.com/mkrogh/pngsquare/pkg/squarer"
	"github.com/mkrogh/pngsquare/util/log"
)

func main() {
	var (
		flagIn          = flag.String("in", ".", "source folder to scan")
		flagOut         = flag.String("out", "", "destination folder (defaults to the source folder, overwriting in place)")
		flagExt         = flag.String("ext", ".png", "file extension to process (case-sensitive)")
		flagWorkers     = flag.Int("workers", 1, "number of files processed in parallel")
		flagKeepGoing   = flag.Bool("keep-going", false, "continue after per-file failures and report them at the end")
		flagMode        = flag.String("mode", "trim", "squaring mode: trim (crop to content, pad) or smart (saliency crop)")
		flagSize        = flag.Int("size", 0, "resize the final square to this side length (0 keeps the natural size)")
		flagCascade     = flag.String("facefinder", "", "path to a pigo facefinder cascade, enables face-aware smart mode")
		flagConfig      = flag.String("config", "", "JSON config file; explicit flags override its values")
		flagWriteConfig = flag.String("write-config", "", "write the effective configuration to this file and exit")
		flagVersion     = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *flagVersion {
		fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return
	}

	cfg := squarer.DefaultConfig()
	if *flagConfig != "" {
		var err error
		cfg, err = squarer.LoadFile(*flagConfig)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Flags the user actually passed win over config file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.SourceRoot = *flagIn
		case "out":
			cfg.DestRoot = *flagOut
		case "ext":
			cfg.Extension = *flagExt
		case "workers":
			cfg.Workers = *flagWorkers
		case "keep-going":
			cfg.KeepGoing = *flagKeepGoing
		case "mode":
			cfg.Mode = squarer.Mode(*flagMode)
		case "size":
			cfg.Size = *flagSize
		case "facefinder":
			cfg.CascadePath = *flagCascade
		}
	})

	s, err := squarer.New(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg = s.Config()

	if *flagWriteConfig != "" {
		if err := cfg.Save(*flagWriteConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		log.Printf("Wrote config to %s", *flagWriteConfig)
		return
	}

	log.Printf("Input folder: %s", cfg.SourceRoot)
	log.Printf("Output folder: %s", cfg.DestRoot)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	log.Printf("Done: %d processed, %d skipped, %d failed",
		summary.Processed, summary.Skipped, len(summary.Failed))
	for _, fe := range summary.Failed {
		log.Printf("Failed: %s: %v", fe.Path, fe.Err)
	}
	if len(summary.Failed) > 0 {
		os.Exit(1)
	}
}
