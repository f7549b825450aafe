package metrics

// SampleRecall is the recall@k outcome for a single row.
type SampleRecall struct {
	Sample   int     // row index in the input matrices
	Relevant int     // number of relevant items in the row
	Captured int     // relevant items found in the top-k
	Recall   float64 // Captured / Relevant, 0 when excluded
	Excluded bool    // row has no relevant item and does not enter the mean
}

type RecallReport struct {
	K        int
	Recall   float64 // macro-average over included samples
	Included int
	Excluded int
	Samples  []SampleRecall
}
