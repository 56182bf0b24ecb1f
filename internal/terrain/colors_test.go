package terrain

import (
	"image"
	"image/color"
	"testing"

	"github.com/woozymasta/terra-road-forge/internal/raster"
)

// TestExtractDominantColorMostlyGrayTexture builds the scenario from
// spec.md §8 E5: a mask covering half the terrain, a texture that is 80%
// gray / 20% yellow inside the covered texels. Expected dominant color
// is the gray majority, #808080.
func TestExtractDominantColorMostlyGrayTexture(t *testing.T) {
	const terrainSize = 512
	const textureSize = 2048

	mask := raster.NewMask(terrainSize)
	for y := 0; y < terrainSize; y++ {
		for x := terrainSize / 2; x < terrainSize; x++ {
			mask.Set(x, y, true)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, textureSize, textureSize))
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	yellow := color.RGBA{R: 255, G: 255, B: 0, A: 255}
	for ty := 0; ty < textureSize; ty++ {
		for tx := 0; tx < textureSize; tx++ {
			c := gray
			if tx >= textureSize/2 && tx%5 == 0 {
				c = yellow // about 20% of the covered texels (205 of 1024 columns)
			}
			img.SetRGBA(tx, ty, c)
		}
	}

	got := ExtractDominantColor(img, mask, terrainSize)
	if got != "#808080" {
		t.Fatalf("dominant color = %s, want #808080", got)
	}
}

func TestExtractDominantColorEmptyMaskReturnsBlack(t *testing.T) {
	mask := raster.NewMask(4)
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if got := ExtractDominantColor(img, mask, 4); got != "#000000" {
		t.Fatalf("dominant color = %s, want #000000 for an empty mask", got)
	}
}

func TestExtractDominantRoughnessPicksMajorityIntensity(t *testing.T) {
	const terrainSize = 4
	const textureSize = 8

	mask := raster.NewMask(terrainSize)
	for y := 0; y < terrainSize; y++ {
		for x := 0; x < terrainSize; x++ {
			mask.Set(x, y, true)
		}
	}

	img := image.NewGray(image.Rect(0, 0, textureSize, textureSize))
	for ty := 0; ty < textureSize; ty++ {
		for tx := 0; tx < textureSize; tx++ {
			v := byte(200)
			if tx == 0 && ty == 0 {
				v = 10
			}
			img.SetGray(tx, ty, color.Gray{Y: v})
		}
	}

	if got := ExtractDominantRoughness(img, mask, terrainSize); got != 200 {
		t.Fatalf("dominant roughness = %d, want 200", got)
	}
}

func TestRGBToHexFormatsUppercase(t *testing.T) {
	if got := RGBToHex(0, 128, 255); got != "#0080FF" {
		t.Fatalf("RGBToHex = %s, want #0080FF", got)
	}
}

func TestDefaultMaterialColorIsDeterministic(t *testing.T) {
	r1, g1, b1 := DefaultMaterialColor("asphalt")
	r2, g2, b2 := DefaultMaterialColor("asphalt")
	if r1 != r2 || g1 != g2 || b1 != b2 {
		t.Fatal("DefaultMaterialColor must be deterministic for the same name")
	}
}
