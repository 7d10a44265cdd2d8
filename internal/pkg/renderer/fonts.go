package renderer

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type FontSpec struct {
	Path string
	Size float64
}

// typeface holds a parsed font. Faces are created per render because a
// font.Face is not safe for concurrent use, while the parsed font is.
type typeface struct {
	font *opentype.Font
	size float64
}

func (t typeface) face() (font.Face, error) {
	return opentype.NewFace(t.font, &opentype.FaceOptions{
		Size:    t.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// loadTypeface reads the TrueType file at fs.Path and falls back to the
// embedded Go font when the file is missing or unreadable.
func loadTypeface(fs FontSpec, fallback []byte) (typeface, error) {
	if fs.Path != "" {
		f, err := parseFontFile(fs.Path)
		if err == nil {
			return typeface{font: f, size: fs.Size}, nil
		}
		logrus.WithFields(logrus.Fields{
			"path":  fs.Path,
			"error": err,
		}).Warn("Font unavailable, using embedded Go font")
	}

	f, err := opentype.Parse(fallback)
	if err != nil {
		return typeface{}, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	return typeface{font: f, size: fs.Size}, nil
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return opentype.Parse(data)
}

type fontSet struct {
	title typeface
	code  typeface
	info  typeface
}

func loadFontSet(title, code, info FontSpec) (*fontSet, error) {
	var (
		fs  fontSet
		err error
	)
	if fs.title, err = loadTypeface(title, gobold.TTF); err != nil {
		return nil, err
	}
	if fs.code, err = loadTypeface(code, gomonobold.TTF); err != nil {
		return nil, err
	}
	if fs.info, err = loadTypeface(info, goregular.TTF); err != nil {
		return nil, err
	}
	return &fs, nil
}
