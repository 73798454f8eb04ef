package ocr

import "github.com/lestrrat-go/option"

type Option = option.Interface

type identPrecision struct{}

func (identPrecision) String() string { return "WithPrecision" }

// WithPrecision sets the number of decimal places the vertical position
// of a word is rounded to before words are grouped into a line. Smaller
// values merge words that are further apart. Negative values are ignored.
func WithPrecision(digits int) Option {
	return option.New(identPrecision{}, digits)
}
