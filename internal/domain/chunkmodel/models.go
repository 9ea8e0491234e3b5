package chunkmodel

import "strings"

// Document is the plain-text output of the extraction step,
// identified by its originating filename.
type Document struct {
	Source  string `json:"source"`
	RawText string `json:"raw_text"`
}

// RawChunk is one word-window cut from a document. SequenceIndex is
// monotonic within the document.
type RawChunk struct {
	DocumentSource string `json:"document_source"`
	Text           string `json:"text"`
	SequenceIndex  int    `json:"sequence_index"`
}

type Category string

const (
	CategoryBuildingProcess Category = "Building Process"
	CategoryCostsFinance    Category = "Costs & Finance"
	CategoryWhyUs           Category = "Why Meridian"
	CategoryFAQ             Category = "FAQ"
	CategoryGeneral         Category = "General"
)

// AllCategories is the closed set offered to the enrichment model.
var AllCategories = []Category{
	CategoryBuildingProcess,
	CategoryCostsFinance,
	CategoryWhyUs,
	CategoryFAQ,
	CategoryGeneral,
}

// ParseCategory is lenient about what the model returns but always
// yields a canonical value. Anything unrecognized is General.
func ParseCategory(s string) Category {
	normalized := strings.ToLower(s)
	normalized = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '&':
			return -1
		}
		return r
	}, normalized)

	switch normalized {
	case "buildingprocess":
		return CategoryBuildingProcess
	case "costsfinance", "costsandfinance":
		return CategoryCostsFinance
	case "whymeridian", "whyus":
		return CategoryWhyUs
	case "faq":
		return CategoryFAQ
	default:
		return CategoryGeneral
	}
}

// Metadata is what enrichment derives from a single raw chunk.
type Metadata struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Keywords   []string `json:"keywords"`
	Category   Category `json:"category"`
	Importance int      `json:"importance"`
}

// EnrichedChunk is the unit of the persisted catalog. Id is the join
// key between the catalog and the vector index, contiguous from 0
// across the whole corpus.
type EnrichedChunk struct {
	Id         int      `json:"id"`
	Source     string   `json:"source"`
	Text       string   `json:"text"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Keywords   []string `json:"keywords"`
	Category   Category `json:"category"`
	Importance int      `json:"importance"`
}

// EmbeddingText composes the string that gets embedded for this chunk.
// The distilled title/summary signal is front-loaded ahead of the raw
// text on purpose.
func (c EnrichedChunk) EmbeddingText() string {
	return c.Title + " " + c.Summary + " " + c.Text
}

// ScoredChunk is one retrieval hit.
type ScoredChunk struct {
	Chunk EnrichedChunk
	Score float32
}

// Query is one user turn's retrieval request.
type Query struct {
	Text        string
	TopK        int
	WantSources bool
}
