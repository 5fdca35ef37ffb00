package squarer

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

const (
	faceMinSize       = 20
	faceShiftFactor   = 0.1
	faceScaleFactor   = 1.1
	faceClusterIoU    = 0.2
	faceMinConfidence = 5.0
)

// FaceFinder detects faces with a pigo cascade so smart mode can keep them
// inside the chosen crop window.
type FaceFinder struct {
	classifier *pigo.Pigo
}

// LoadFaceFinder reads and unpacks a pigo facefinder cascade file.
func LoadFaceFinder(path string) (*FaceFinder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade file: %w", err)
	}

	return &FaceFinder{classifier: classifier}, nil
}

// Strongest returns the region of the highest-confidence face in img. The
// second return value is false when no face clears the confidence threshold.
func (f *FaceFinder) Strongest(img image.Image) (image.Rectangle, bool) {
	src := pigo.ImgToNRGBA(img)
	cols := src.Bounds().Dx()
	rows := src.Bounds().Dy()

	maxSize := cols
	if rows > maxSize {
		maxSize = rows
	}

	params := pigo.CascadeParams{
		MinSize:     faceMinSize,
		MaxSize:     maxSize,
		ShiftFactor: faceShiftFactor,
		ScaleFactor: faceScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := f.classifier.RunCascade(params, 0.0)
	dets = f.classifier.ClusterDetections(dets, faceClusterIoU)

	var best image.Rectangle
	var bestQ float32
	found := false
	for _, d := range dets {
		if d.Q < faceMinConfidence {
			continue
		}
		if !found || d.Q > bestQ {
			half := d.Scale / 2
			best = image.Rect(d.Col-half, d.Row-half, d.Col+half, d.Row+half)
			bestQ = d.Q
			found = true
		}
	}
	return best, found
}
