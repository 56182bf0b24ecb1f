package raster

import (
	"bufio"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/woozymasta/terra-road-forge/internal/errs"
)

// ReadHeightmapPNG decodes a 16-bit grayscale PNG into a Heightmap scaled
// by maxHeight (code 0 -> 0m, 65535 -> maxHeight). Matches spec.md §6's
// heightmap input contract.
func ReadHeightmapPNG(path string, maxHeight float64) (*Heightmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIOError("read", path, err)
	}
	defer f.Close()

	img, err := png.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errs.NewIOError("decode", path, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != h {
		return nil, &errs.CorruptInputError{Reason: "heightmap PNG is not square"}
	}
	if !IsAllowedSize(w) {
		return nil, &errs.CorruptInputError{Reason: "heightmap PNG size is not an allowed power of two"}
	}

	hm := NewHeightmap(w)
	gray16, is16 := img.(*image.Gray16)
	for row := 0; row < h; row++ {
		// PNG top-left origin; heightmap is bottom-left, so flip rows.
		outY := h - 1 - row
		for col := 0; col < w; col++ {
			var code uint16
			if is16 {
				code = gray16.Gray16At(b.Min.X+col, b.Min.Y+row).Y
			} else {
				r, _, _, _ := img.At(b.Min.X+col, b.Min.Y+row).RGBA()
				code = uint16(r)
			}
			hm.Set(col, outY, float64(code)/65535.0*maxHeight)
		}
	}
	return hm, nil
}

// WriteHeightmapPNG encodes a Heightmap to a 16-bit grayscale PNG, inverse
// of ReadHeightmapPNG's scaling. Used for the debug smoothed-heightmap output.
func WriteHeightmapPNG(path string, hm *Heightmap, maxHeight float64) error {
	img := image.NewGray16(image.Rect(0, 0, hm.Size, hm.Size))
	for y := 0; y < hm.Size; y++ {
		row := hm.Size - 1 - y
		for x := 0; x < hm.Size; x++ {
			code := quantizeU16(hm.At(x, y), maxHeight)
			img.SetGray16(x, row, color.Gray16{Y: code})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errs.NewIOError("write", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		return errs.NewIOError("encode", path, err)
	}
	return errs.NewIOError("flush", path, w.Flush())
}

func quantizeU16(h, maxHeight float64) uint16 {
	if maxHeight <= 0 {
		return 0
	}
	v := h / maxHeight * 65535.0
	if v < 0 {
		v = 0
	}
	if v > 65535 {
		v = 65535
	}
	return uint16(v + 0.5)
}

// ReadTextureImage decodes an arbitrary PNG texture, top-left origin
// preserved as-is, for dominant-color/roughness sampling over a
// material's layer mask.
func ReadTextureImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIOError("read", path, err)
	}
	defer f.Close()

	img, err := png.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errs.NewIOError("decode", path, err)
	}
	return img, nil
}

// ReadMaskPNG decodes an 8-bit grayscale PNG into a boolean mask,
// thresholding at 128 per spec.md §6. If the decoded image size differs
// from targetSize, it is resampled with golang.org/x/image/draw.
func ReadMaskPNG(path string, targetSize int) (*Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIOError("read", path, err)
	}
	defer f.Close()
	return decodeMaskPNG(f, targetSize)
}

func decodeMaskPNG(r io.Reader, targetSize int) (*Mask, error) {
	img, err := png.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, errs.NewIOError("decode", "", err)
	}

	b := img.Bounds()
	if b.Dx() != targetSize || b.Dy() != targetSize {
		resized := image.NewGray(image.Rect(0, 0, targetSize, targetSize))
		draw.NearestNeighbor.Scale(resized, resized.Bounds(), img, b, draw.Over, nil)
		img = resized
		b = img.Bounds()
	}

	m := NewMask(targetSize)
	for row := 0; row < targetSize; row++ {
		outY := targetSize - 1 - row
		for col := 0; col < targetSize; col++ {
			gray := color.GrayModel.Convert(img.At(b.Min.X+col, b.Min.Y+row)).(color.Gray)
			m.Set(col, outY, gray.Y >= 128)
		}
	}
	return m, nil
}
