package collection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Dayende-ib/guichet/internal/domain/collection"
)

// collectionToHash converts a domain Collection to a map for HSET.
func collectionToHash(col collection.Collection) map[string]string {
	return map[string]string{
		"name":          col.Name(),
		"filter_fields": strings.Join(col.FilterFields(), ","),
		"vector_dim":    strconv.Itoa(col.VectorDim()),
		"created_at":    strconv.FormatInt(col.CreatedAt(), 10),
	}
}

// collectionFromHash hydrates a domain Collection from an HGETALL result map.
func collectionFromHash(m map[string]string, defaultVectorDim int) (collection.Collection, error) {
	name := m["name"]

	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return collection.Collection{}, fmt.Errorf("invalid created_at: %w", err)
	}

	var filterFields []string
	if raw := m["filter_fields"]; raw != "" {
		filterFields = strings.Split(raw, ",")
	}

	vectorDim := defaultVectorDim
	if dimStr, ok := m["vector_dim"]; ok && dimStr != "" {
		if parsed, err := strconv.Atoi(dimStr); err == nil {
			vectorDim = parsed
		}
	}

	return collection.Reconstruct(name, filterFields, vectorDim, createdAt), nil
}
