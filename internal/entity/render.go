package entity

import "fmt"

type RenderMode string

const (
	RenderTickets RenderMode = "ticket"
	RenderSymbols RenderMode = "qr"
	RenderBoth    RenderMode = "both"
)

func ParseRenderMode(s string) (RenderMode, error) {
	switch RenderMode(s) {
	case RenderTickets, RenderSymbols, RenderBoth:
		return RenderMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRenderMode, s)
}

// Kinds expands a mode into the artifact kinds it produces, in render order.
func (m RenderMode) Kinds() []ArtifactKind {
	switch m {
	case RenderTickets:
		return []ArtifactKind{ArtifactTicket}
	case RenderSymbols:
		return []ArtifactKind{ArtifactSymbol}
	default:
		return []ArtifactKind{ArtifactTicket, ArtifactSymbol}
	}
}

type ArtifactKind string

const (
	ArtifactTicket ArtifactKind = "ticket"
	ArtifactSymbol ArtifactKind = "qr"
)

type RenderReport struct {
	Kind      ArtifactKind `json:"kind"`
	OutputDir string       `json:"output_dir"`
	Total     int          `json:"total"`
	Rendered  int          `json:"rendered"`
	Failed    int          `json:"failed"`
}

type ImportResult struct {
	ImportBatch string `json:"import_batch"`
	Total       int    `json:"total"`
	Imported    int    `json:"imported"`
	Skipped     int    `json:"skipped"`
	// Stored is the row count of the tickets table after the import.
	Stored      int64  `json:"stored"`
}
