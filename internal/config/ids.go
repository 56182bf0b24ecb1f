package config

import (
	"fmt"

	"github.com/cespare/xxhash"
)

// StableEntityID derives a short deterministic identifier for a spline
// or junction from its owning material name and its arena index, in the
// same spirit as the teacher's hash32 (tv4p/utils.go): a human-readable
// prefix plus a hash suffix, stable across runs given the same inputs,
// used for Collada node names.
func StableEntityID(materialName string, index int) string {
	h := xxhash.Sum64String(fmt.Sprintf("%s#%d", materialName, index))
	return fmt.Sprintf("%s_%08x", sanitizeName(materialName), uint32(h))
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "material"
	}
	return string(out)
}
