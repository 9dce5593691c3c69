package plonk

// hooks for white-box tests living in plonk_test

const TranscriptLabel = transcriptLabel

var (
	ComputeBlindedLRO = computeBlindedLRO
	ComputeZ          = computeZ
	ComputeQuotient   = computeQuotient
)
