package blend

import (
	"math"

	"github.com/woozymasta/terra-road-forge/internal/raster"
)

// applyAnnulusSmoothing runs a small Gaussian blur confined to pixels
// within SmoothingMaskExtensionMeters of the protected road surface but
// outside it, per spec.md §4.9 ("extend a post-process Gaussian
// smoothing only to this annulus, never into the protected road
// surface"). Exclusion-masked and protected pixels are never written.
func applyAnnulusSmoothing(working *raster.Heightmap, protection *raster.Mask, exclusion *raster.Mask, pixelToMeters float64, cfg Config) {
	extensionPx := int(math.Ceil(cfg.SmoothingMaskExtensionM / pixelToMeters))
	if extensionPx <= 0 {
		return
	}
	eligible := annulusMask(protection, exclusion, extensionPx, working.Size)
	kernel := gaussianKernel1D(cfg.SmoothingKernelSize, cfg.SmoothingSigma)

	for iter := 0; iter < cfg.SmoothingIterations; iter++ {
		blurred := separableBlur(working, eligible, kernel)
		copy(working.Data, blurred.Data)
	}
}

// annulusMask marks pixels within extensionPx (Chebyshev distance) of
// any protected pixel, excluding the protected and exclusion pixels
// themselves.
func annulusMask(protection, exclusion *raster.Mask, extensionPx, size int) *raster.Mask {
	out := raster.NewMask(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if protection.At(x, y) {
				continue
			}
			if exclusion != nil && exclusion.At(x, y) {
				continue
			}
			if nearProtected(protection, x, y, extensionPx, size) {
				out.Set(x, y, true)
			}
		}
	}
	return out
}

func nearProtected(protection *raster.Mask, x, y, radius, size int) bool {
	for dy := -radius; dy <= radius; dy++ {
		ny := y + dy
		if ny < 0 || ny >= size {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			nx := x + dx
			if nx < 0 || nx >= size {
				continue
			}
			if protection.At(nx, ny) {
				return true
			}
		}
	}
	return false
}

func gaussianKernel1D(size int, sigma float64) []float64 {
	if size < 1 {
		size = 1
	}
	if size%2 == 0 {
		size++
	}
	if sigma <= 0 {
		sigma = float64(size) / 3
	}
	radius := size / 2
	kernel := make([]float64, size)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// separableBlur applies kernel horizontally then vertically, only on
// pixels where eligible is set; every other pixel keeps working's value
// unmodified, so the road surface and anything outside the annulus
// never change.
func separableBlur(working *raster.Heightmap, eligible *raster.Mask, kernel []float64) *raster.Heightmap {
	radius := len(kernel) / 2
	size := working.Size

	horizontal := working.Clone()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !eligible.At(x, y) {
				continue
			}
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += working.At(x+k, y) * kernel[k+radius]
			}
			horizontal.Set(x, y, sum)
		}
	}

	out := horizontal.Clone()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !eligible.At(x, y) {
				continue
			}
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += horizontal.At(x, y+k) * kernel[k+radius]
			}
			out.Set(x, y, sum)
		}
	}
	return out
}
