package metrics

import "errors"

var (
	ErrShapeMismatch      = errors.New("relevance and score matrices differ in shape")
	ErrInvalidK           = errors.New("k must be between 1 and the number of columns")
	ErrInvalidRelevance   = errors.New("relevance entries must be 0 or 1")
	ErrAllSamplesExcluded = errors.New("no sample has a relevant item")
)
