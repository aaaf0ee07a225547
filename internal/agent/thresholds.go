package agent

// Similarity cutoffs. Structure (challenges and approaches) carries more
// signal per token than a free-form idea summary, so it gets a stricter
// cutoff.
const (
	// SimilarityThresholdStructure gates challenge and approach matches.
	SimilarityThresholdStructure = 0.75

	// SimilarityThresholdIdea gates summary-to-summary matches.
	SimilarityThresholdIdea = 0.70

	// ReconnectionThreshold gates suggesting an orphaned idea reconnect to
	// an active objective.
	ReconnectionThreshold = 0.70

	// MaxSimilarResults caps matches reported per similarity scan.
	MaxSimilarResults = 5
)
