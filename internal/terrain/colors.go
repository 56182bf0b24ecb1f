package terrain

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/cespare/xxhash"

	"github.com/woozymasta/terra-road-forge/internal/raster"
)

// colorBucket is a quantized RGB color-cube cell used to vote for the
// dominant color, per spec.md §4.1 ("pick the RGB triple (color cube)
// with highest count").
type colorBucket struct {
	r, g, b byte
}

// ExtractDominantColor samples rgbaTexture wherever mask covers the
// corresponding terrain pixel and returns the most common color as
// "#RRGGBB". Texture has top-left origin, mask has bottom-left origin: a
// Y-flip is applied per texture row, per spec.md §4.1.
func ExtractDominantColor(rgbaTexture image.Image, mask *raster.Mask, terrainSize int) string {
	b := rgbaTexture.Bounds()
	tw, th := b.Dx(), b.Dy()
	if tw == 0 || th == 0 || terrainSize == 0 {
		return "#000000"
	}

	counts := map[colorBucket]int{}
	var order []colorBucket

	texelsPerPixelX := float64(tw) / float64(terrainSize)
	texelsPerPixelY := float64(th) / float64(terrainSize)

	for ty := 0; ty < th; ty++ {
		// Y-flip: texture row ty (top-left origin) corresponds to mask row
		// terrainSize-1-floor(ty/texelsPerPixelY) (bottom-left origin).
		for tx := 0; tx < tw; tx++ {
			if !anyMaskedUnderTexel(mask, terrainSize, tx, ty, texelsPerPixelX, texelsPerPixelY, th) {
				continue
			}
			r, g, bl, _ := rgbaTexture.At(b.Min.X+tx, b.Min.Y+ty).RGBA()
			key := colorBucket{r: byte(r >> 8), g: byte(g >> 8), b: byte(bl >> 8)}
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
	}

	if len(order) == 0 {
		return "#000000"
	}

	best := order[0]
	bestCount := counts[best]
	for _, k := range order[1:] {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}

	return fmt.Sprintf("#%02X%02X%02X", best.r, best.g, best.b)
}

func anyMaskedUnderTexel(mask *raster.Mask, terrainSize, tx, ty int, texelsPerPixelX, texelsPerPixelY float64, textureHeight int) bool {
	pxStart := int(float64(tx) / texelsPerPixelX)
	pxEnd := int(float64(tx+1) / texelsPerPixelX)
	if pxEnd <= pxStart {
		pxEnd = pxStart + 1
	}

	// Flip the texture row into mask (bottom-left) row space.
	flippedTy := textureHeight - 1 - ty
	pyStart := int(float64(flippedTy) / texelsPerPixelY)
	pyEnd := int(float64(flippedTy+1) / texelsPerPixelY)
	if pyEnd <= pyStart {
		pyEnd = pyStart + 1
	}

	for py := pyStart; py < pyEnd && py < terrainSize; py++ {
		for px := pxStart; px < pxEnd && px < terrainSize; px++ {
			if mask.At(px, py) {
				return true
			}
		}
	}
	return false
}

// ExtractDominantRoughness mirrors ExtractDominantColor for a grayscale
// roughness texture, returning the most common 0-255 intensity.
func ExtractDominantRoughness(grayTexture image.Image, mask *raster.Mask, terrainSize int) byte {
	b := grayTexture.Bounds()
	tw, th := b.Dx(), b.Dy()
	if tw == 0 || th == 0 || terrainSize == 0 {
		return 0
	}

	var counts [256]int
	texelsPerPixelX := float64(tw) / float64(terrainSize)
	texelsPerPixelY := float64(th) / float64(terrainSize)

	for ty := 0; ty < th; ty++ {
		for tx := 0; tx < tw; tx++ {
			if !anyMaskedUnderTexel(mask, terrainSize, tx, ty, texelsPerPixelX, texelsPerPixelY, th) {
				continue
			}
			gray := color.GrayModel.Convert(grayTexture.At(b.Min.X+tx, b.Min.Y+ty)).(color.Gray)
			counts[gray.Y]++
		}
	}

	best := 0
	for i := 1; i < 256; i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return byte(best)
}

// DefaultMaterialColor synthesizes a deterministic, reproducible color for
// a material with no source texture, using the same hash/clamp/saturate
// shape as the teacher's roadparts.Palette hashColor fallback.
func DefaultMaterialColor(materialName string) (r, g, b byte) {
	h64 := xxhash.Sum64String(materialName)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], h64)
	lo := binary.LittleEndian.Uint32(buf[:4])
	hi := binary.LittleEndian.Uint32(buf[4:])
	h := lo ^ hi

	r = byte(60 + (h&0xff)%160)
	g = byte(60 + ((h>>8)&0xff)%160)
	b = byte(60 + ((h>>16)&0xff)%160)

	avg := (int(r) + int(g) + int(b)) / 3
	r = clampColorByte(avg + int(float64(int(r)-avg)*1.2))
	g = clampColorByte(avg + int(float64(int(g)-avg)*1.2))
	b = clampColorByte(avg + int(float64(int(b)-avg)*1.2))
	return r, g, b
}

// RGBToHex formats an RGB triple as "#RRGGBB", matching
// ExtractDominantColor's return format.
func RGBToHex(r, g, b byte) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func clampColorByte(v int) byte {
	if v < 40 {
		return 40
	}
	if v > 220 {
		return 220
	}
	return byte(v)
}
