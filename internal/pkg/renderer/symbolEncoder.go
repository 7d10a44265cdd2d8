package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/aztec"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ticketqr/internal/entity"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	SymbologyQR         = "qr"
	SymbologyDataMatrix = "datamatrix"
	SymbologyAztec      = "aztec"

	// quiet zone, in modules, around boombuler symbols
	quietZone = 2
	// minimal error correction percentage for aztec symbols
	aztecECC = 33
)

// SymbolEncoder turns the literal ticket code into a 2D barcode image.
type SymbolEncoder interface {
	Encode(content string) (image.Image, error)
}

func NewSymbolEncoder(symbology string, moduleSize int) (SymbolEncoder, error) {
	if moduleSize <= 0 {
		moduleSize = 1
	}

	switch symbology {
	case SymbologyQR, "":
		return &qrEncoder{moduleSize: moduleSize}, nil
	case SymbologyDataMatrix:
		return &boombulerEncoder{moduleSize: moduleSize, encode: func(s string) (barcode.Barcode, error) {
			return datamatrix.Encode(s)
		}}, nil
	case SymbologyAztec:
		return &boombulerEncoder{moduleSize: moduleSize, encode: func(s string) (barcode.Barcode, error) {
			return aztec.Encode([]byte(s), aztecECC, 0)
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownSymbology, symbology)
	}
}

// qrEncoder produces QR symbols at the highest error-correction level
// with the standard four-module border.
type qrEncoder struct {
	moduleSize int
}

func (e *qrEncoder) Encode(content string) (image.Image, error) {
	q, err := qrcode.New(content, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	// negative size means pixels per module
	return q.Image(-e.moduleSize), nil
}

type boombulerEncoder struct {
	moduleSize int
	encode     func(string) (barcode.Barcode, error)
}

func (e *boombulerEncoder) Encode(content string) (image.Image, error) {
	raw, err := e.encode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode symbol: %w", err)
	}

	bounds := raw.Bounds()
	scaled, err := barcode.Scale(raw, bounds.Dx()*e.moduleSize, bounds.Dy()*e.moduleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to scale symbol: %w", err)
	}

	pad := quietZone * e.moduleSize
	canvas := imaging.New(scaled.Bounds().Dx()+2*pad, scaled.Bounds().Dy()+2*pad, color.White)
	return imaging.Paste(canvas, scaled, image.Pt(pad, pad)), nil
}
