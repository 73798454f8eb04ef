package ocr

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// Vertex is a point on a page. Normalized coordinates are in [0, 1], with
// the origin in the top left corner.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingPolygon describes the area a word occupies.
type BoundingPolygon struct {
	NormalizedVertices []Vertex `json:"normalizedVertices"`
}

// Word is a single recognized word.
type Word struct {
	Text            string           `json:"text"`
	Confidence      float64          `json:"confidence,omitempty"`
	BoundingPolygon *BoundingPolygon `json:"boundingPolygon,omitempty"`
}

// Anchor returns the first normalized vertex of the word. Missing
// geometry, and coordinates that are not finite, are reported as 0.
func (w Word) Anchor() (x, y float64) {
	if w.BoundingPolygon == nil || len(w.BoundingPolygon.NormalizedVertices) == 0 {
		return 0, 0
	}
	v := w.BoundingPolygon.NormalizedVertices[0]
	return finite(v.X), finite(v.Y)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit,omitempty"`
}

// Page is one page of an analyzed document.
type Page struct {
	PageNumber int         `json:"pageNumber"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Words      []Word      `json:"words"`
}

type DocumentMetadata struct {
	PageCount int    `json:"pageCount"`
	MimeType  string `json:"mimeType,omitempty"`
}

// Document is the subset of an AnalyzeDocument response that carries
// recognized text.
type Document struct {
	DocumentMetadata *DocumentMetadata `json:"documentMetadata,omitempty"`
	Pages            []Page            `json:"pages"`
}

// HasWords reports whether any page of the document has at least one word.
func (d *Document) HasWords() bool {
	if d == nil {
		return false
	}
	for _, page := range d.Pages {
		if len(page.Words) > 0 {
			return true
		}
	}
	return false
}

// ParseDocument decodes an AnalyzeDocument JSON response.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ocr: failed to decode document: %w", err)
	}
	return &doc, nil
}
