package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/ds124wfegd/ticketqr/internal/pkg/codegen"
	"github.com/fogleman/gg"
)

type TicketLayout struct {
	Width        int
	Height       int
	SymbolSize   int
	SymbolX      int
	SymbolY      int
	Title        string
	Instructions []string
	TitleFont    FontSpec
	CodeFont     FontSpec
	InfoFont     FontSpec
}

func DefaultTicketLayout() TicketLayout {
	return TicketLayout{
		Width:      800,
		Height:     400,
		SymbolSize: 300,
		SymbolX:    450,
		SymbolY:    50,
		Title:      "CONCERT TICKET",
		Instructions: []string{
			"Show this QR code at the entrance",
			"Keep this ticket until the end",
		},
		TitleFont: FontSpec{Path: "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf", Size: 40},
		CodeFont:  FontSpec{Path: "/usr/share/fonts/truetype/dejavu/DejaVuSansMono-Bold.ttf", Size: 32},
		InfoFont:  FontSpec{Path: "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf", Size: 20},
	}
}

const (
	accentColor    = "#6366f1"
	mutedColor     = "#64748b"
	separatorColor = "#e2e8f0"
)

var instructionColors = []string{"#10b981", "#f59e0b"}

type ticketRenderer struct {
	encoder SymbolEncoder
	layout  TicketLayout
	fonts   *fontSet
}

// NewTicketRenderer renders the decorative ticket: frame, printed text on the
// left, the symbol on the right.
func NewTicketRenderer(encoder SymbolEncoder, layout TicketLayout) (ArtifactRenderer, error) {
	if layout.Width <= 0 || layout.Height <= 0 || layout.SymbolSize <= 0 {
		return nil, fmt.Errorf("invalid ticket layout %dx%d, symbol %d", layout.Width, layout.Height, layout.SymbolSize)
	}

	fonts, err := loadFontSet(layout.TitleFont, layout.CodeFont, layout.InfoFont)
	if err != nil {
		return nil, err
	}

	return &ticketRenderer{encoder: encoder, layout: layout, fonts: fonts}, nil
}

func (r *ticketRenderer) Kind() entity.ArtifactKind {
	return entity.ArtifactTicket
}

func (r *ticketRenderer) Render(ticket entity.Ticket) (image.Image, error) {
	symbol, err := r.encoder.Encode(ticket.Code)
	if err != nil {
		return nil, err
	}
	symbol = imaging.Resize(symbol, r.layout.SymbolSize, r.layout.SymbolSize, imaging.NearestNeighbor)

	w, h := float64(r.layout.Width), float64(r.layout.Height)
	dc := gg.NewContext(r.layout.Width, r.layout.Height)

	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(symbol, r.layout.SymbolX, r.layout.SymbolY)

	// frames
	dc.SetColor(color.Black)
	dc.SetLineWidth(3)
	dc.DrawRectangle(10, 10, w-20, h-20)
	dc.Stroke()
	dc.SetHexColor(accentColor)
	dc.SetLineWidth(2)
	dc.DrawRectangle(20, 20, w-40, h-40)
	dc.Stroke()

	if err := r.text(dc, r.fonts.title, accentColor, r.layout.Title, 40); err != nil {
		return nil, err
	}
	if err := r.text(dc, r.fonts.code, "#000000", ticket.Code, 120); err != nil {
		return nil, err
	}
	if err := r.text(dc, r.fonts.info, mutedColor, fmt.Sprintf("Ticket ID: #%d", ticket.TicketID), 180); err != nil {
		return nil, err
	}
	if err := r.text(dc, r.fonts.info, mutedColor, "Series: "+codegen.SeriesOf(ticket.Code), 210); err != nil {
		return nil, err
	}
	for i, line := range r.layout.Instructions {
		if err := r.text(dc, r.fonts.info, instructionColors[i%len(instructionColors)], line, 260+30*float64(i)); err != nil {
			return nil, err
		}
	}

	separatorX := float64(r.layout.SymbolX) - 30
	dc.SetHexColor(separatorColor)
	dc.SetLineWidth(2)
	dc.DrawLine(separatorX, 30, separatorX, h-30)
	dc.Stroke()

	return dc.Image(), nil
}

// text draws s with its top-left corner at (40, top).
func (r *ticketRenderer) text(dc *gg.Context, tf typeface, hex, s string, top float64) error {
	face, err := tf.face()
	if err != nil {
		return fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	dc.SetFontFace(face)
	dc.SetHexColor(hex)
	dc.DrawStringAnchored(s, 40, top, 0, 1)
	return nil
}
