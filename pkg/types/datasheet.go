// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Format identifies the raw file format of an acquired datasheet.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// ConversionStatus indicates the state of raw-to-HTML conversion for a datasheet.
type ConversionStatus string

const (
	ConversionNone   ConversionStatus = "none"
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// Datasheet holds metadata and file paths for an acquired datasheet.
type Datasheet struct {
	// ID is a slug derived from the datasheet identifier (e.g. "lm317", "2n7002").
	ID string `json:"id" yaml:"id"`

	// SourceURL is the URL from which the datasheet was downloaded.
	// Empty for documents acquired from local files.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// Path is the local filesystem path to the raw file.
	Path string `json:"path" yaml:"path"`

	// Format is the raw file format: pdf or html.
	Format Format `json:"format" yaml:"format"`

	// Title is the document title, when one could be determined.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Manufacturer identifies the vendor (e.g. "ti", "onsemi").
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`

	// PartNumbers lists the part numbers the datasheet covers.
	PartNumbers []string `json:"part_numbers,omitempty" yaml:"part_numbers,omitempty"`

	// Date is the acquisition timestamp.
	Date time.Time `json:"date" yaml:"date"`

	// ConversionStatus tracks whether the raw file has been converted to HTML.
	ConversionStatus ConversionStatus `json:"conversion_status" yaml:"conversion_status"`
}

// SplitLabel names one of the three corpus subsets used for experiment staging.
type SplitLabel string

const (
	SplitTrain SplitLabel = "train"
	SplitDev   SplitLabel = "dev"
	SplitTest  SplitLabel = "test"
)

// SplitFile is the persisted form of a corpus split assignment
// (corpus/splits.yaml). Assignments map document ID to split label.
type SplitFile struct {
	TrainFrac   float64               `json:"train_frac" yaml:"train_frac"`
	DevFrac     float64               `json:"dev_frac" yaml:"dev_frac"`
	Counts      map[SplitLabel]int    `json:"counts" yaml:"counts"`
	Assignments map[string]SplitLabel `json:"assignments" yaml:"assignments"`
}
