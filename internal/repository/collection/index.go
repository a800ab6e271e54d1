package collection

import (
	"github.com/Dayende-ib/guichet/internal/db"
)

// buildIndex creates the FT index definition for a collection: one TAG field
// per filterable metadata field plus the HNSW/COSINE vector field.
func buildIndex(name string, filterFields []string, vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(IndexName(name)).Prefix(RecordPrefix(name))

	for _, f := range filterFields {
		b = b.Tag(f)
	}

	return b.VectorHNSW("vector", vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).Build()
}
