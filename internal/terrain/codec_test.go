package terrain

import (
	"math"
	"testing"

	"github.com/woozymasta/terra-road-forge/internal/raster"
)

func TestEncodeFlatSingleMaterialSize(t *testing.T) {
	const n = 256
	hm := raster.NewHeightmap(n)
	for i := range hm.Data {
		hm.Data[i] = 50.0
	}

	materials := []Material{{Name: "grass"}}
	data, err := Encode(hm, materials, EncodeOptions{MaxHeight: 100})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Matches spec.md §8 E1's worked byte count: header + heights +
	// material index + material name table. The reserved layer-texture
	// block is never written (see Decode's tolerant handling below).
	want := 5 + n*n*2 + n*n + 4 + (1 + len("grass"))
	if len(data) != want {
		t.Fatalf("encoded size = %d, want %d", len(data), want)
	}
}

func TestRoundTripFlatTerrain(t *testing.T) {
	const n = 256
	hm := raster.NewHeightmap(n)
	for i := range hm.Data {
		hm.Data[i] = 50.0
	}

	materials := []Material{{Name: "grass"}}
	data, err := Encode(hm, materials, EncodeOptions{MaxHeight: 100})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	meters := decoded.ToMeters(100)
	for i, v := range meters.Data {
		if math.Abs(v-50.0) > 0.002 {
			t.Fatalf("pixel %d decoded to %v, want ~50", i, v)
		}
	}

	for i, idx := range decoded.MaterialOf {
		if idx != 0 {
			t.Fatalf("pixel %d material index = %d, want 0 (single material, no masks)", i, idx)
		}
	}

	if decoded.HasLayerTextureBlock {
		t.Fatal("decoded.HasLayerTextureBlock = true, want false (Encode never writes the reserved block)")
	}
}

func TestDecodeWithoutLayerTextureBlock(t *testing.T) {
	const n = 4
	hm := raster.NewHeightmap(n)

	data := make([]byte, 0)
	data = append(data, FormatVersion)
	var sizeBuf [4]byte
	writeU32(sizeBuf[:], uint32(n))
	data = append(data, sizeBuf[:]...)
	data = append(data, make([]byte, 2*n*n)...) // heights
	data = append(data, make([]byte, n*n)...)   // material index, all zero
	var countBuf [4]byte
	writeU32(countBuf[:], 1)
	data = append(data, countBuf[:]...)
	data = append(data, byte(len("grass")))
	data = append(data, []byte("grass")...)

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.HasLayerTextureBlock {
		t.Fatal("decoded.HasLayerTextureBlock = true, want false for a file with no reserved block")
	}
	if decoded.Heights.Size != n {
		t.Fatalf("decoded size = %d, want %d (without block)", decoded.Heights.Size, n)
	}
}

func TestDecodeWithLayerTextureBlock(t *testing.T) {
	const n = 4

	data := make([]byte, 0)
	data = append(data, FormatVersion)
	var sizeBuf [4]byte
	writeU32(sizeBuf[:], uint32(n))
	data = append(data, sizeBuf[:]...)
	data = append(data, make([]byte, 2*n*n)...) // heights
	data = append(data, make([]byte, n*n)...)   // material index, all zero
	data = append(data, make([]byte, n*n)...)   // reserved layer-texture block
	var countBuf [4]byte
	writeU32(countBuf[:], 1)
	data = append(data, countBuf[:]...)
	data = append(data, byte(len("grass")))
	data = append(data, []byte("grass")...)

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.HasLayerTextureBlock {
		t.Fatal("decoded.HasLayerTextureBlock = false, want true for a file carrying the reserved block")
	}
	if decoded.Heights.Size != n {
		t.Fatalf("decoded size = %d, want %d (with block)", decoded.Heights.Size, n)
	}
}

func TestEncodeDecodeEncodeIdempotent(t *testing.T) {
	const n = 256
	hm := raster.NewHeightmap(n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			hm.Set(x, y, float64((x+y)%50))
		}
	}

	mask := raster.NewMask(n)
	for y := 0; y < n; y++ {
		for x := 0; x < n/2; x++ {
			mask.Set(x, y, true)
		}
	}

	materials := []Material{{Name: "grass"}, {Name: "road", Layer: mask}}
	data1, err := Encode(hm, materials, EncodeOptions{MaxHeight: 100})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	meters := decoded.ToMeters(100)
	reMaterials := make([]Material, len(decoded.Materials))
	for i, m := range decoded.Materials {
		reMaterials[i] = Material{Name: m.Name, Layer: m.Layer}
	}

	data2, err := Encode(meters, reMaterials, EncodeOptions{MaxHeight: 100})
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}

	if len(data1) != len(data2) {
		t.Fatalf("re-encoded length differs: %d vs %d", len(data1), len(data2))
	}
	for i := range data1 {
		if data1[i] != data2[i] {
			t.Fatalf("re-encoded byte %d differs: %d vs %d", i, data1[i], data2[i])
		}
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	data := make([]byte, 16)
	data[0] = 7
	if _, err := Decode(data); err == nil {
		t.Fatal("expected UnsupportedFormatError for bad version")
	}
}

func TestDecodeRejectsNonPowerOfTwoSize(t *testing.T) {
	data := make([]byte, 16)
	data[0] = FormatVersion
	writeU32(data[1:5], 300)
	if _, err := Decode(data); err == nil {
		t.Fatal("expected CorruptInputError for non-power-of-two size")
	}
}

func TestMaterialResolutionHighestIndexWins(t *testing.T) {
	const n = 4
	hm := raster.NewHeightmap(n)

	m0 := raster.NewMask(n)
	m1 := raster.NewMask(n)
	m0.Set(0, 0, true)
	m1.Set(0, 0, true) // overlaps m0; material index 1 should win (highest wins)

	materials := []Material{{Name: "a", Layer: m0}, {Name: "b", Layer: m1}}
	idx := resolveMaterialIndices(n, materials)
	if idx[0] != 1 {
		t.Fatalf("overlapping pixel resolved to material %d, want 1", idx[0])
	}
}
