package squarer

import "image"

// isBackground reports whether a pixel counts as background. Two kinds of
// pixel do: fully transparent ones, and fully opaque pure white ones. A
// semi-transparent white pixel is content.
func isBackground(r, g, b, a uint8) bool {
	if a == 0 {
		return true
	}
	return a == 0xff && r == 0xff && g == 0xff && b == 0xff
}

// ContentBounds returns the minimal rectangle enclosing every non-background
// pixel of img. The second return value is false when the image contains no
// content at all.
func ContentBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isBackground(img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]) {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
			i += 4
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
