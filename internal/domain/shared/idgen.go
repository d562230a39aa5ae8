package shared

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// DigitAlphabet is used for invoice identifiers
	DigitAlphabet = "0123456789"
	// UpperAlphabet is used for quotation identifiers
	UpperAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// DefaultIDLength is the length of generated invoice and quotation ids
	DefaultIDLength = 15

	defaultMaxAttempts = 16
)

// ExistsFunc reports whether an identifier is already taken
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// IDGenerator produces random fixed-length identifiers, drawing a new
// candidate while the previous one collides with an existing record.
type IDGenerator struct {
	alphabet    string
	length      int
	maxAttempts int
	random      io.Reader
}

// IDGeneratorOption configures an IDGenerator
type IDGeneratorOption func(*IDGenerator)

// WithRandomSource replaces crypto/rand as the entropy source
func WithRandomSource(r io.Reader) IDGeneratorOption {
	return func(g *IDGenerator) {
		g.random = r
	}
}

// WithMaxAttempts bounds the number of candidates drawn per Generate call
func WithMaxAttempts(n int) IDGeneratorOption {
	return func(g *IDGenerator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// NewIDGenerator creates a generator over alphabet
func NewIDGenerator(alphabet string, length int, opts ...IDGeneratorOption) *IDGenerator {
	g := &IDGenerator{
		alphabet:    alphabet,
		length:      length,
		maxAttempts: defaultMaxAttempts,
		random:      rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewInvoiceIDGenerator returns the 15-digit numeric generator
func NewInvoiceIDGenerator(opts ...IDGeneratorOption) *IDGenerator {
	return NewIDGenerator(DigitAlphabet, DefaultIDLength, opts...)
}

// NewQuotationIDGenerator returns the 15-letter uppercase generator
func NewQuotationIDGenerator(opts ...IDGeneratorOption) *IDGenerator {
	return NewIDGenerator(UpperAlphabet, DefaultIDLength, opts...)
}

// Generate returns an identifier for which exists reports false
func (g *IDGenerator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		id, err := g.candidate()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check id %s: %w", id, err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

// candidate draws one byte per position and rejects values above the largest
// multiple of the alphabet size so every symbol is equally likely.
func (g *IDGenerator) candidate() (string, error) {
	size := len(g.alphabet)
	limit := 256 - 256%size
	buf := make([]byte, g.length)
	one := make([]byte, 1)
	for i := 0; i < g.length; {
		if _, err := io.ReadFull(g.random, one); err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		if int(one[0]) >= limit {
			continue
		}
		buf[i] = g.alphabet[int(one[0])%size]
		i++
	}
	return string(buf), nil
}
