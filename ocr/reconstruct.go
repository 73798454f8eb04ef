// Package ocr turns positioned OCR words into plain text lines.
//
// Words are grouped into lines by rounding the vertical position of their
// anchor vertex, lines are ordered top to bottom, and the words of a line
// left to right. The result approximates reading order for single column
// layouts; it does not detect columns or tables.
package ocr

import (
	"cmp"
	"math/big"
	"slices"
	"strconv"
	"strings"
)

// DefaultPrecision is the number of decimal places the vertical position
// of a word is rounded to. Two decimals group words whose normalized y
// coordinates fall within about 1% of the page height.
const DefaultPrecision = 2

// Row is a group of words that share a rounded vertical position.
type Row struct {
	// Key is the rounded y coordinate, as a decimal string
	Key   string
	Y     float64
	Words []Word
}

// Text joins the words of the row with single spaces.
func (r Row) Text() string {
	texts := make([]string, len(r.Words))
	for i, w := range r.Words {
		texts[i] = w.Text
	}
	return strings.Join(texts, " ")
}

// Reconstructor rebuilds text lines from OCR documents. The zero value is
// not usable; create one with NewReconstructor. A Reconstructor is safe
// for concurrent use.
type Reconstructor struct {
	precision int
}

func NewReconstructor(options ...Option) *Reconstructor {
	precision := DefaultPrecision
	for _, option := range options {
		switch option.Ident() {
		case identPrecision{}:
			if v, ok := option.Value().(int); ok && v >= 0 {
				precision = v
			}
		}
	}
	return &Reconstructor{precision: precision}
}

func (r *Reconstructor) Precision() int {
	return r.precision
}

var defaultReconstructor = NewReconstructor()

// Reconstruct rebuilds the text of doc using DefaultPrecision.
func Reconstruct(doc *Document) string {
	return defaultReconstructor.Reconstruct(doc)
}

// Reconstruct returns the lines of every page, in page order, joined by
// "\n". It returns "" for a nil document or one without words.
func (r *Reconstructor) Reconstruct(doc *Document) string {
	return strings.Join(r.Lines(doc), "\n")
}

// Lines returns the text lines of every page, in page order.
func (r *Reconstructor) Lines(doc *Document) []string {
	if doc == nil {
		return nil
	}
	var lines []string
	for i := range doc.Pages {
		for _, row := range r.Rows(&doc.Pages[i]) {
			lines = append(lines, row.Text())
		}
	}
	return lines
}

// Rows groups the words of page into rows, ordered top to bottom. Words
// within a row are ordered left to right; words at the same x keep their
// original order.
func (r *Reconstructor) Rows(page *Page) []Row {
	if page == nil || len(page.Words) == 0 {
		return nil
	}

	var rows []Row
	index := make(map[string]int)
	for _, w := range page.Words {
		_, y := w.Anchor()
		key, rounded := r.bucket(y)
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, Row{Key: key, Y: rounded})
		}
		rows[i].Words = append(rows[i].Words, w)
	}

	slices.SortFunc(rows, func(a, b Row) int {
		return cmp.Compare(a.Y, b.Y)
	})
	for i := range rows {
		slices.SortStableFunc(rows[i].Words, func(a, b Word) int {
			ax, _ := a.Anchor()
			bx, _ := b.Anchor()
			return cmp.Compare(ax, bx)
		})
	}
	return rows
}

// bucket rounds the exact value of y to the configured number of
// decimals. Halves round away from zero, so 0.125 becomes "0.13" while
// 0.145, stored as 0.14499999..., becomes "0.14".
func (r *Reconstructor) bucket(y float64) (string, float64) {
	key := new(big.Rat).SetFloat64(y).FloatString(r.precision)
	rounded, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return key, y
	}
	if rounded == 0 {
		// fold "-0.00" into "0.00"
		rounded = 0
		key = strconv.FormatFloat(0, 'f', r.precision, 64)
	}
	return key, rounded
}
