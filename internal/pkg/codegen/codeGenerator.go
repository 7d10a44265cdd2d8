// Ticket code grammar: PREFIX-NUMERIC-MEMORABLE, e.g. A-4821-BATEC
package codegen

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/ds124wfegd/ticketqr/internal/entity"
)

const (
	Consonants = "BCDFGHJKLMNPRSTVWXYZ"
	Vowels     = "AEIOU"
	Separator  = "-"

	numericMin      = 1000
	numericMax      = 9999
	memorableLength = 5
)

var codePattern = regexp.MustCompile(`^([A-Z])-([1-9][0-9]{3})-([A-Z]{5})$`)

// Source is the subset of *math/rand/v2.Rand the generator draws from.
type Source interface {
	IntN(n int) int
}

type CodeGenerator struct {
	rnd Source
}

func NewCodeGenerator(rnd Source) *CodeGenerator {
	return &CodeGenerator{rnd: rnd}
}

// NewRandomCodeGenerator seeds a PCG source from crypto/rand.
func NewRandomCodeGenerator() *CodeGenerator {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("codegen: cannot seed random source: %v", err))
	}
	src := mrand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))
	return NewCodeGenerator(mrand.New(src))
}

func (g *CodeGenerator) Draw(prefix string) string {
	return prefix + Separator + g.numeric() + Separator + g.memorable()
}

func (g *CodeGenerator) numeric() string {
	return strconv.Itoa(numericMin + g.rnd.IntN(numericMax-numericMin+1))
}

// memorable alternates consonant and vowel, starting with a consonant.
func (g *CodeGenerator) memorable() string {
	var b strings.Builder
	b.Grow(memorableLength)
	for i := 0; i < memorableLength; i++ {
		if i%2 == 0 {
			b.WriteByte(Consonants[g.rnd.IntN(len(Consonants))])
		} else {
			b.WriteByte(Vowels[g.rnd.IntN(len(Vowels))])
		}
	}
	return b.String()
}

// SpaceSize is the number of distinct codes available to a single prefix.
func SpaceSize() int64 {
	size := int64(numericMax - numericMin + 1)
	for i := 0; i < memorableLength; i++ {
		if i%2 == 0 {
			size *= int64(len(Consonants))
		} else {
			size *= int64(len(Vowels))
		}
	}
	return size
}

func Validate(code string) error {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return fmt.Errorf("%w: %q does not match PREFIX-NNNN-XXXXX", entity.ErrInvalidCode, code)
	}
	for i, c := range m[3] {
		alphabet := Consonants
		if i%2 == 1 {
			alphabet = Vowels
		}
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("%w: %q has %q at memorable position %d", entity.ErrInvalidCode, code, c, i)
		}
	}
	return nil
}

// SeriesOf returns the part of the code before the first separator.
func SeriesOf(code string) string {
	series, _, _ := strings.Cut(code, Separator)
	return series
}
