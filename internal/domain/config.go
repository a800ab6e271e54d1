package domain

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "guichet:"

// CollectionName is the single procedure collection.
const CollectionName = "procedures_bf"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
	Algorithm      string
	PassagePrefix  string
	QueryPrefix    string
}

// DefaultVectorConfig returns the default configuration tuned for
// multilingual-e5-base. The "query: "/"passage: " prefixes are the e5
// framing convention: queries and passages are only comparable by inner
// product when embedded with matching prefixes.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "intfloat/multilingual-e5-base",
		Dimensions:     768,
		DistanceMetric: "cosine",
		Algorithm:      "hnsw",
		PassagePrefix:  "passage: ",
		QueryPrefix:    "query: ",
	}
}
