package renderer

import (
	"fmt"
	"image"
	"io"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ticketqr/internal/entity"
)

const fileExt = ".png"

// ArtifactRenderer turns one record into one image.
type ArtifactRenderer interface {
	Kind() entity.ArtifactKind
	Render(ticket entity.Ticket) (image.Image, error)
}

// FileName derives the artifact name from the code: every separator becomes
// an underscore, e.g. A-1234-BATEC -> ticket_A_1234_BATEC.png.
func FileName(kind entity.ArtifactKind, code string) string {
	safe := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, code)
	return string(kind) + "_" + safe + fileExt
}

func Encode(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

type symbolRenderer struct {
	encoder SymbolEncoder
}

// NewSymbolRenderer renders the bare barcode symbol.
func NewSymbolRenderer(encoder SymbolEncoder) ArtifactRenderer {
	return &symbolRenderer{encoder: encoder}
}

func (r *symbolRenderer) Kind() entity.ArtifactKind {
	return entity.ArtifactSymbol
}

func (r *symbolRenderer) Render(ticket entity.Ticket) (image.Image, error) {
	return r.encoder.Encode(ticket.Code)
}
