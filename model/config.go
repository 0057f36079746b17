package model

import "fmt"

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// DefaultQueryConfig returns the default retrieval configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:                10,
		SimilarityThreshold: 0.1,
	}
}

// Validate checks TopK and SimilarityThreshold
func (c QueryConfig) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("top k must be positive, got %d", c.TopK)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0, 1], got %v", c.SimilarityThreshold)
	}
	return nil
}
