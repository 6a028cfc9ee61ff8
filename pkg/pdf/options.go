package pdf

import (
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// LoadOption is a function that modifies document loading behavior
type LoadOption func(*loadConfig)

type loadConfig struct {
	Password string
	Logger   *zap.Logger
	Geometry bool
}

func newLoadConfig(opts ...LoadOption) *loadConfig {
	config := &loadConfig{
		Logger:   zap.NewNop(),
		Geometry: true,
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithPassword sets the user password for encrypted documents
func WithPassword(password string) LoadOption {
	return func(c *loadConfig) {
		c.Password = password
	}
}

// WithLogger sets the logger used while loading and reading pages
func WithLogger(logger *zap.Logger) LoadOption {
	return func(c *loadConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithoutGeometry skips the pdfcpu pass; rulings then come only from the
// rectangles the text backend reports
func WithoutGeometry() LoadOption {
	return func(c *loadConfig) {
		c.Geometry = false
	}
}

// Exhaustion selects what PageIterator.Next does past the last page
type Exhaustion string

const (
	// ExhaustionFail makes Next return an error wrapping ErrPagesExhausted.
	ExhaustionFail Exhaustion = "fail"
	// ExhaustionStop makes Next return io.EOF.
	ExhaustionStop Exhaustion = "stop"
)

// IteratorOption is a function that modifies page iteration behavior
type IteratorOption func(*iteratorConfig)

type iteratorConfig struct {
	Exhaustion Exhaustion
	Start      int
}

// WithExhaustion sets the past-the-end policy of the iterator
func WithExhaustion(policy Exhaustion) IteratorOption {
	return func(c *iteratorConfig) {
		c.Exhaustion = policy
	}
}

// WithStartPage starts the sequence at the given 1-based page number
func WithStartPage(pageNumber int) IteratorOption {
	return func(c *iteratorConfig) {
		if pageNumber > 1 {
			c.Start = pageNumber - 1
		}
	}
}

// TextExtractionOption is a function that modifies text extraction behavior
type TextExtractionOption func(*textExtractionConfig)

type textExtractionConfig struct {
	XTolerance  float64
	YTolerance  float64
	UnicodeNorm string
}

// WithXTolerance sets the horizontal gap that separates words
func WithXTolerance(tolerance float64) TextExtractionOption {
	return func(c *textExtractionConfig) {
		c.XTolerance = tolerance
	}
}

// WithYTolerance sets the vertical distance that separates lines
func WithYTolerance(tolerance float64) TextExtractionOption {
	return func(c *textExtractionConfig) {
		c.YTolerance = tolerance
	}
}

// WithUnicodeNorm normalizes extracted text ("NFC", "NFD", "NFKC" or "NFKD")
func WithUnicodeNorm(form string) TextExtractionOption {
	return func(c *textExtractionConfig) {
		c.UnicodeNorm = form
	}
}

// NormalizeText applies the named Unicode normalization form; unknown or
// empty forms return s unchanged
func NormalizeText(s, form string) string {
	switch form {
	case "NFC":
		return norm.NFC.String(s)
	case "NFD":
		return norm.NFD.String(s)
	case "NFKC":
		return norm.NFKC.String(s)
	case "NFKD":
		return norm.NFKD.String(s)
	default:
		return s
	}
}
