package qdrant

// Test hooks for id mapping.
var (
	PointID     = pointID
	DocID       = docID
	SplitTarget = splitTarget
)
