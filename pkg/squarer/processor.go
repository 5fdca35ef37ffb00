package squarer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
)

// ErrNoContent is returned when an image consists entirely of background
// pixels and has no bounding box to crop to.
var ErrNoContent = errors.New("image has no content")

// Processor turns a decoded image into a square one.
type Processor struct {
	mode      Mode
	size      int
	resampler imaging.ResampleFilter
	faces     *FaceFinder // nil disables face boost
}

// NewProcessor creates a Processor for the given configuration. faces may be
// nil, in which case smart mode runs without face awareness.
func NewProcessor(cfg Config, faces *FaceFinder) *Processor {
	return &Processor{
		mode:      cfg.Mode,
		size:      cfg.Size,
		resampler: imaging.Lanczos,
		faces:     faces,
	}
}

// Square transforms img into a square image according to the configured mode
// and, when a target size is set, resizes the result to that side length.
func (p *Processor) Square(ctx context.Context, img image.Image) (*image.NRGBA, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var out *image.NRGBA
	var err error
	switch p.mode {
	case ModeSmart:
		out, err = p.smartSquare(ctx, img)
	default:
		out, err = p.trimSquare(img)
	}
	if err != nil {
		return nil, err
	}

	if p.size > 0 && out.Bounds().Dx() != p.size {
		out = imaging.Resize(out, p.size, p.size, p.resampler)
	}
	return out, nil
}

// trimSquare crops img to its content bounding box and pastes the result
// centered on a square transparent-white canvas. The canvas side is the
// larger of the cropped width and height, so content is never scaled.
func (p *Processor) trimSquare(img image.Image) (*image.NRGBA, error) {
	nrgba := imaging.Clone(img)

	box, ok := ContentBounds(nrgba)
	if !ok {
		return nil, ErrNoContent
	}

	cropped := imaging.Crop(nrgba, box)

	side := cropped.Bounds().Dx()
	if h := cropped.Bounds().Dy(); h > side {
		side = h
	}

	canvas := imaging.New(side, side, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0})
	return imaging.PasteCenter(canvas, cropped), nil
}

// smartSquare cuts the most interesting square window out of img, using
// saliency analysis and, when available, face detection to place the window.
func (p *Processor) smartSquare(ctx context.Context, img image.Image) (*image.NRGBA, error) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w == h {
		return imaging.Clone(img), nil
	}

	side := w
	if h < side {
		side = h
	}

	crop, err := p.findBestCrop(ctx, img, side)
	if err != nil {
		return nil, fmt.Errorf("finding best crop: %w", err)
	}
	if crop.Empty() {
		crop = centeredSquare(img.Bounds(), side)
	}

	if p.faces != nil {
		if face, ok := p.faces.Strongest(img); ok {
			crop = coverPoint(crop, centerOf(face), img.Bounds())
		}
	}

	out := imaging.Crop(img, crop)
	// The analyzer keeps the aspect ratio but picks its own scale.
	if out.Bounds().Dx() != side || out.Bounds().Dy() != side {
		out = imaging.Resize(out, side, side, p.resampler)
	}
	return out, nil
}

// centeredSquare returns a side-length square window centered in bounds.
func centeredSquare(bounds image.Rectangle, side int) image.Rectangle {
	x := bounds.Min.X + (bounds.Dx()-side)/2
	y := bounds.Min.Y + (bounds.Dy()-side)/2
	return image.Rect(x, y, x+side, y+side)
}

// findBestCrop runs the smartcrop analyzer in a goroutine so the caller can
// be cancelled; the analyzer itself has no context support.
func (p *Processor) findBestCrop(ctx context.Context, img image.Image, side int) (image.Rectangle, error) {
	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		analyzer := smartcrop.NewAnalyzer(&resizer{resampler: p.resampler})
		crop, err := analyzer.FindBestCrop(img, side, side)
		resultChan <- cropResult{crop: crop, err: err}
	}()

	select {
	case <-ctx.Done():
		return image.Rectangle{}, ctx.Err()
	case result := <-resultChan:
		return result.crop, result.err
	}
}

// coverPoint translates crop as little as possible so that pt lies inside it,
// keeping the crop within bounds. The crop size never changes.
func coverPoint(crop image.Rectangle, pt image.Point, bounds image.Rectangle) image.Rectangle {
	var dx, dy int
	if pt.X < crop.Min.X {
		dx = pt.X - crop.Min.X
	} else if pt.X >= crop.Max.X {
		dx = pt.X - crop.Max.X + 1
	}
	if pt.Y < crop.Min.Y {
		dy = pt.Y - crop.Min.Y
	} else if pt.Y >= crop.Max.Y {
		dy = pt.Y - crop.Max.Y + 1
	}

	shifted := crop.Add(image.Pt(dx, dy))

	if shifted.Min.X < bounds.Min.X {
		shifted = shifted.Add(image.Pt(bounds.Min.X-shifted.Min.X, 0))
	} else if shifted.Max.X > bounds.Max.X {
		shifted = shifted.Add(image.Pt(bounds.Max.X-shifted.Max.X, 0))
	}
	if shifted.Min.Y < bounds.Min.Y {
		shifted = shifted.Add(image.Pt(0, bounds.Min.Y-shifted.Min.Y))
	} else if shifted.Max.Y > bounds.Max.Y {
		shifted = shifted.Add(image.Pt(0, bounds.Max.Y-shifted.Max.Y))
	}
	return shifted
}

func centerOf(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

// resizer implements the smartcrop.Resizer interface on top of imaging.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
