// Package terrain implements the BeamNG-compatible .ter v9 binary codec
// (spec.md §4.1): heightmap + material-index raster + material name
// table, plus per-material layer mask extraction and dominant
// color/roughness sampling.
//
// The byte-level encode/decode is ported directly from the teacher's
// tv4p read/write idiom: explicit little-endian helpers, manual bounds
// checks, no reflection-based binary.Read.
package terrain

import (
	"github.com/woozymasta/terra-road-forge/internal/errs"
	"github.com/woozymasta/terra-road-forge/internal/raster"
)

// FormatVersion is the only .ter version this codec understands.
const FormatVersion = 9

// HoleIndex is the material-index sentinel for a terrain hole.
const HoleIndex = 0xFF

// Material is one entry of the ordered material list. Order is
// authoritative: list index = stored material index. The first material
// acts as fallback where no layer mask is set, per spec.md §3.
type Material struct {
	Name  string
	Layer *raster.Mask // nil if this material has no painted layer
}

// Terrain is the decoded/encodable terrain: heights plus the ordered
// material list and the resolved per-pixel material index.
type Terrain struct {
	Heights              *raster.Heightmap
	Materials            []Material
	MaxHeight            float64
	MaterialOf           []uint8 // row-major bottom-up, length Size*Size; HoleIndex = hole
	HasLayerTextureBlock bool    // whether the decoded file carried the reserved layer-texture block
}

// ToMeters rescales the raw u16 height codes decoded from a .ter file into
// meters using maxHeight, matching the u16 = round(h / maxHeight * 65535)
// quantization used by Encode.
func (t *Terrain) ToMeters(maxHeight float64) *raster.Heightmap {
	out := raster.NewHeightmap(t.Heights.Size)
	for i, code := range t.Heights.Data {
		out.Data[i] = code / 65535.0 * maxHeight
	}
	t.MaxHeight = maxHeight
	return out
}

// EncodeOptions configures Encode.
type EncodeOptions struct {
	MaxHeight float64
}

// Encode serializes heights + materials into a .ter v9 byte stream.
//
// Material-index resolution: for each pixel, materials are tested from
// the highest index down; the first material whose layer mask is true at
// that pixel wins. Materials without masks are never auto-placed.
// Pixels with no match fall back to material index 0. Pixel coordinates
// are iterated bottom-up to match the on-disk row order.
func Encode(heights *raster.Heightmap, materials []Material, opts EncodeOptions) ([]byte, error) {
	n := heights.Size
	if !raster.IsAllowedSize(n) {
		return nil, errs.NewValidationError("SizePixels", "heightmap size must be a power of two in the allowed range")
	}
	if len(materials) == 0 {
		return nil, errs.NewValidationError("Materials", "at least one material is required")
	}
	if opts.MaxHeight <= 0 {
		return nil, errs.NewValidationError("MaxHeight", "must be positive")
	}

	matIndex := resolveMaterialIndices(n, materials)

	out := make([]byte, 0, 1+4+2*n*n+n*n+4+estimateNameBytes(materials))
	out = append(out, FormatVersion)

	var sizeBuf [4]byte
	writeU32(sizeBuf[:], uint32(n))
	out = append(out, sizeBuf[:]...)

	var hBuf [2]byte
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			writeU16(hBuf[:], clampU16(heights.At(x, y)/opts.MaxHeight*65535.0))
			out = append(out, hBuf[:]...)
		}
	}

	out = append(out, matIndex...)

	// The reserved layer-texture block is never written: it is all
	// zeros with no decodable content, and omitting it matches the
	// documented file size in spec.md's worked example (§8 E1). The
	// decoder still accepts files that do carry the block (§9).
	var countBuf [4]byte
	writeU32(countBuf[:], uint32(len(materials)))
	out = append(out, countBuf[:]...)

	for _, m := range materials {
		if len(m.Name) > 255 {
			return nil, errs.NewValidationError("Materials[].name", "material name longer than 255 bytes")
		}
		out = append(out, byte(len(m.Name)))
		out = append(out, []byte(m.Name)...)
	}

	return out, nil
}

func estimateNameBytes(materials []Material) int {
	n := 0
	for _, m := range materials {
		n += 1 + len(m.Name)
	}
	return n
}

// resolveMaterialIndices computes the per-pixel material-index raster,
// row-major bottom-up, per the highest-index-first resolution rule.
func resolveMaterialIndices(n int, materials []Material) []byte {
	out := make([]byte, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			idx := byte(0)
			found := false
			for i := len(materials) - 1; i >= 0; i-- {
				m := materials[i]
				if m.Layer != nil && m.Layer.At(x, y) {
					idx = byte(i)
					found = true
					break
				}
			}
			if !found {
				idx = 0
			}
			out[y*n+x] = idx
		}
	}
	return out
}

// Decode parses a .ter v9 byte stream into heights and per-material masks.
//
// The reserved layer-texture block is optional on read: the decoder
// infers its presence by comparing the total file length against the two
// possible expected sizes (with/without the block), per the Open
// Question resolution in DESIGN.md.
func Decode(data []byte) (*Terrain, error) {
	if len(data) < 5 {
		return nil, &errs.CorruptInputError{Reason: "file too short for header"}
	}

	version := data[0]
	if version != FormatVersion {
		return nil, &errs.UnsupportedFormatError{Format: "ter v" + itoa(int(version))}
	}

	n := int(readU32(data[1:5]))
	if !raster.IsAllowedSize(n) {
		return nil, &errs.CorruptInputError{Reason: "size is not a power of two in the allowed range"}
	}

	heightsLen := 2 * n * n
	matLen := n * n
	headerLen := 5

	if len(data) < headerLen+heightsLen+matLen {
		return nil, &errs.CorruptInputError{Reason: "file too short for heights and material index"}
	}

	heightsStart := headerLen
	matStart := heightsStart + heightsLen

	matIndex := data[matStart : matStart+matLen]

	// Try "no layer texture" layout first, then "with layer texture".
	namesOffset := matStart + matLen
	names, consumedWithoutLayer, okWithout := tryParseMaterialNames(data, namesOffset)
	if okWithout && namesOffset+consumedWithoutLayer == len(data) {
		return buildTerrain(data, n, heightsStart, matIndex, names, false)
	}

	namesOffsetWithLayer := namesOffset + matLen
	if namesOffsetWithLayer <= len(data) {
		names2, consumedWithLayer, okWith := tryParseMaterialNames(data, namesOffsetWithLayer)
		if okWith && namesOffsetWithLayer+consumedWithLayer == len(data) {
			return buildTerrain(data, n, heightsStart, matIndex, names2, true)
		}
	}

	return nil, &errs.CorruptInputError{Reason: "material table length inconsistent with file size"}
}

// tryParseMaterialNames parses the material_count + materials[] block
// starting at offset, returning the names, the number of bytes consumed,
// and whether parsing succeeded without running off the end of data.
func tryParseMaterialNames(data []byte, offset int) ([]string, int, bool) {
	if offset+4 > len(data) {
		return nil, 0, false
	}
	count := int(readU32(data[offset : offset+4]))
	if count < 0 || count > len(data) {
		return nil, 0, false
	}

	pos := offset + 4
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if pos+1 > len(data) {
			return nil, 0, false
		}
		ln := int(data[pos])
		pos++
		if pos+ln > len(data) {
			return nil, 0, false
		}
		names = append(names, string(data[pos:pos+ln]))
		pos += ln
	}

	return names, pos - offset, true
}

func buildTerrain(data []byte, n, heightsStart int, matIndex []byte, names []string, hasLayerTextureBlock bool) (*Terrain, error) {
	hm := raster.NewHeightmap(n)
	pos := heightsStart
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			code := readU16(data[pos : pos+2])
			hm.Set(x, y, float64(code))
			pos += 2
		}
	}

	materials := make([]Material, len(names))
	for i, name := range names {
		materials[i] = Material{Name: name, Layer: raster.NewMask(n)}
	}

	matOf := make([]uint8, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			idx := matIndex[y*n+x]
			matOf[y*n+x] = idx
			if idx == HoleIndex {
				continue
			}
			if int(idx) >= len(materials) {
				return nil, &errs.CorruptInputError{Reason: "material index out of range"}
			}
			materials[idx].Layer.Set(x, y, true)
		}
	}

	return &Terrain{
		Heights:              hm, // raw u16 codes; caller rescales with MaxHeight
		Materials:            materials,
		MaterialOf:           matOf,
		HasLayerTextureBlock: hasLayerTextureBlock,
	}, nil
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
