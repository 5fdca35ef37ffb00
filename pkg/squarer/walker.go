// Package squarer batch-processes images in a directory tree: each file is
// cropped to its content bounding box, padded to a square canvas and written
// to a mirrored path under the destination root.
package squarer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mkrogh/pngsquare/util"
	"github.com/mkrogh/pngsquare/util/log"
)

// Squarer batch-processes a directory tree of images, mirroring the tree
// under the destination root.
type Squarer struct {
	cfg  Config
	proc *Processor
}

// Summary reports the outcome of a run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    []FileError
}

// FileError records a single file that could not be processed.
type FileError struct {
	Path string
	Err  error
}

// job pairs a source file with its mirrored destination path.
type job struct {
	src string
	dst string
}

// New creates a Squarer for cfg. The configuration is normalized first, and
// the face detection cascade is loaded when one is configured. A missing or
// broken cascade only disables face awareness; the run itself still proceeds.
func New(cfg Config) (*Squarer, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	var faces *FaceFinder
	if cfg.CascadePath != "" {
		var err error
		faces, err = LoadFaceFinder(cfg.CascadePath)
		if err != nil {
			log.Printf("Warning: face detection disabled: %v", err)
			faces = nil
		}
	}

	return &Squarer{
		cfg:  cfg,
		proc: NewProcessor(cfg, faces),
	}, nil
}

// Config returns the normalized configuration the Squarer runs with.
func (s *Squarer) Config() Config {
	return s.cfg
}

// Run walks the source tree and squares every file matching the configured
// extension. Files with no detectable content are skipped with a warning.
// Without KeepGoing the first failure aborts the run; with it, failures are
// collected into the summary and the remaining files are still processed.
func (s *Squarer) Run(ctx context.Context) (*Summary, error) {
	jobs, err := s.discover()
	if err != nil {
		return nil, err
	}

	processed := util.NewSafeCounter()
	skipped := util.NewSafeCounter()

	var mu sync.Mutex
	var failed []FileError

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, j := range jobs {
		j := j
		g.Go(func() error {
			log.Printf("Processing: %s -> %s", j.src, j.dst)

			err := s.processFile(ctx, j)
			switch {
			case errors.Is(err, ErrNoContent):
				log.Printf("Warning: skipping %s: %v", j.src, err)
				skipped.Increment()
			case err != nil && s.cfg.KeepGoing:
				log.Printf("Warning: %s failed: %v", j.src, err)
				mu.Lock()
				failed = append(failed, FileError{Path: j.src, Err: err})
				mu.Unlock()
			case err != nil:
				return fmt.Errorf("%s: %w", j.src, err)
			default:
				processed.Increment()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Summary{
		Processed: processed.Value(),
		Skipped:   skipped.Value(),
		Failed:    failed,
	}, nil
}

// discover walks the source tree collecting eligible files and creating the
// mirrored destination directories as it goes. Extension matching is
// case-sensitive.
func (s *Squarer) discover() ([]job, error) {
	var jobs []job

	err := filepath.WalkDir(s.cfg.SourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), s.cfg.Extension) {
			return nil
		}

		rel, err := filepath.Rel(s.cfg.SourceRoot, filepath.Dir(path))
		if err != nil {
			return err
		}

		outDir := filepath.Join(s.cfg.DestRoot, rel)
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", outDir, err)
		}

		jobs = append(jobs, job{src: path, dst: filepath.Join(outDir, d.Name())})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.cfg.SourceRoot, err)
	}

	return jobs, nil
}

// processFile runs the full read-transform-write cycle for one file. The
// decoded image stays local to this call, so peak memory is bounded by the
// number of workers.
func (s *Squarer) processFile(ctx context.Context, j job) error {
	img, err := imaging.Open(j.src)
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}

	out, err := s.proc.Square(ctx, img)
	if err != nil {
		return err
	}

	return writeAtomic(out, j.dst)
}

// writeAtomic encodes img next to dst under a unique temporary name and
// renames it into place, so an interrupted in-place run never leaves a
// half-written file where the source used to be.
func writeAtomic(img image.Image, dst string) error {
	format, err := imaging.FormatFromFilename(dst)
	if err != nil {
		return fmt.Errorf("resolving output format: %w", err)
	}

	tmp := dst + ".tmp-" + uuid.NewString()
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := imaging.Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing output file: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming output file: %w", err)
	}
	return nil
}
