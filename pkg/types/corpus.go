// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Figure is a single image occurrence located in a converted datasheet.
type Figure struct {
	// DocID identifies the datasheet the figure was found in.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// Index is the zero-based position of the figure in document order.
	Index int `json:"index" yaml:"index"`

	// Source is the image reference as written in the document
	// (img src attribute or object data reference).
	Source string `json:"source" yaml:"source"`

	// Caption is the figcaption or alt text, when present.
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// Section is the nearest preceding heading.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Page is the page number hint carried through conversion, 0 when unknown.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`

	// Block is the zero-based index of the document block containing the
	// figure, used for candidate pairing distance.
	Block int `json:"block" yaml:"block"`

	// Width and Height are the declared pixel dimensions, 0 when absent.
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`
}

// PartOccurrence records a part-number string found in document text.
type PartOccurrence struct {
	// Text is the part number as it appears in the document.
	Text string `json:"text" yaml:"text"`

	// Section is the heading under which the occurrence was found.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Page is the page number hint, 0 when unknown.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`

	// Block is the zero-based index of the text block containing the
	// occurrence, used for candidate pairing distance.
	Block int `json:"block" yaml:"block"`
}

// ParseResult holds the figure inventory produced by parsing one datasheet.
type ParseResult struct {
	// DocID identifies the source datasheet.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// Figures lists the located images in document order.
	Figures []Figure `json:"figures" yaml:"figures"`

	// Parts lists part-number occurrences found in visible text.
	Parts []PartOccurrence `json:"parts" yaml:"parts"`

	// Error records a parse failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// MentionType categorizes a mention extracted from a parsed datasheet.
type MentionType string

const (
	MentionFigure MentionType = "figure"
	MentionPart   MentionType = "part"
)

// Mention is a typed extraction from a datasheet with provenance.
type Mention struct {
	// ID is a stable identifier, consistent across re-extractions of
	// unchanged content.
	ID string `json:"id" yaml:"id"`

	// Type categorizes the mention: figure or part.
	Type MentionType `json:"type" yaml:"type"`

	// Text is the mention surface form: the caption for figure mentions,
	// the part number for part mentions.
	Text string `json:"text" yaml:"text"`

	// DocID matches the Datasheet record from acquisition.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// Section is the heading under which the mention was found.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Page is the page number hint, 0 when unknown.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`

	// FigureIndex is the figure's document-order index for figure
	// mentions, -1 for part mentions.
	FigureIndex int `json:"figure_index" yaml:"figure_index"`

	// Block is the zero-based index of the document block the mention
	// was anchored to.
	Block int `json:"block" yaml:"block"`

	// Confidence is a float between 0.0 and 1.0 assigned by the matcher.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Candidate pairs a part mention with a figure mention from the same
// document for downstream labeling.
type Candidate struct {
	// ID is a stable identifier derived from the two mention IDs.
	ID string `json:"id" yaml:"id"`

	// DocID identifies the shared source datasheet.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// PartMentionID and FigureMentionID reference the paired mentions.
	PartMentionID   string `json:"part_mention_id" yaml:"part_mention_id"`
	FigureMentionID string `json:"figure_mention_id" yaml:"figure_mention_id"`

	// Distance is the separation between the two mentions in text blocks.
	Distance int `json:"distance" yaml:"distance"`
}

// ExtractionResult holds the output of extracting mentions and candidates
// from a single datasheet.
type ExtractionResult struct {
	// DocID identifies the source datasheet.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// Mentions contains the extracted figure and part mentions.
	Mentions []Mention `json:"mentions" yaml:"mentions"`

	// Candidates contains part/figure pairings within the distance limit.
	Candidates []Candidate `json:"candidates" yaml:"candidates"`

	// Error records an extraction failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
