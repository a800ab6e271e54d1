package procedure

import (
	"encoding/binary"
	"math"

	domproc "github.com/Dayende-ib/guichet/internal/domain/procedure"
)

// procedureToHash converts a procedure plus its vector into a flat
// map[string]string for HSET. The vector field feeds the FT index;
// espace and theme are the TAG filter fields.
func procedureToHash(p domproc.Procedure, vector []float32) map[string]string {
	return map[string]string{
		"titre":       p.Titre(),
		"description": p.Description(),
		"url":         p.URL(),
		"source":      p.Source(),
		"espace":      p.Espace(),
		"theme":       p.Theme(),
		"cout":        p.Cout(),
		"conditions":  p.Conditions(),
		"infos":       p.Infos(),
		"vector":      vectorToBytes(vector),
	}
}

// procedureFromHash converts a flat hash map back into a domain Procedure.
func procedureFromHash(id string, m map[string]string) domproc.Procedure {
	return domproc.Reconstruct(
		id,
		m["titre"],
		m["description"],
		m["url"],
		m["source"],
		m["espace"],
		m["theme"],
		m["cout"],
		m["conditions"],
		m["infos"],
	)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
