// Package constants provides shared constants used across the codebase.
package constants

// Ingestion constants
const (
	// MaxUploadSize is the multipart form memory limit for gallery uploads.
	MaxUploadSize = 256 << 20

	// MaxIngestWidth and MaxIngestHeight bound originals accepted through
	// the editor surface to a 1920x1080 box (aspect preserved).
	MaxIngestWidth  = 1920
	MaxIngestHeight = 1080
)

// Face search constants
const (
	// FaceChipSize is the side of the square a detected face is resized
	// to before flattening into a feature vector.
	FaceChipSize = 32

	// FaceVectorDim is the resulting vector length.
	FaceVectorDim = FaceChipSize * FaceChipSize

	// HNSWMaxNeighbors is the M parameter for the vector index graph.
	HNSWMaxNeighbors = 16

	// HNSWMinCandidates is the candidate-set size above which face search
	// consults the vector index instead of scanning linearly.
	HNSWMinCandidates = 256
)

// Derived artifact constants
const (
	// WatermarkMaxSize bounds watermarked derivatives so search matches
	// never expose full-resolution bytes before purchase.
	WatermarkMaxSize = 1024

	// RenderTimestampLayout tags derived edit filenames, millisecond
	// resolution, so successive renders of the same image never collide.
	RenderTimestampLayout = "20060102150405.000"
)
