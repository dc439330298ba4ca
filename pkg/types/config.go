package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "datasheet-miner/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AcquisitionConfig holds settings for the acquisition stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// DatasheetsDir is the base directory for datasheets (contains raw/, metadata/, html/).
	DatasheetsDir string `json:"datasheets_dir" yaml:"datasheets_dir"`

	// VendorTokens maps a vendor key (e.g. "ti") to a portal API token
	// sent as a bearer credential when downloading from that vendor.
	VendorTokens map[string]string `json:"vendor_tokens,omitempty" yaml:"vendor_tokens,omitempty"`
}

// ConversionBackend identifies the PDF conversion tool.
type ConversionBackend string

const (
	BackendPdftohtml ConversionBackend = "pdftohtml"
	BackendDocling   ConversionBackend = "docling"
)

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects the conversion tool: pdftohtml or docling.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// DatasheetsDir is the base directory for datasheets (contains raw/, metadata/, html/).
	DatasheetsDir string `json:"datasheets_dir" yaml:"datasheets_dir"`
}

// ParseConfig holds settings for the parsing stage.
type ParseConfig struct {
	// DatasheetsDir is the base directory for datasheets (contains html/).
	DatasheetsDir string `json:"datasheets_dir" yaml:"datasheets_dir"`

	// CorpusDir is the base directory for corpus output (contains parsed/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// Parallelism is the number of documents parsed concurrently (default 1).
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// SplitConfig holds settings for corpus partitioning.
type SplitConfig struct {
	// TrainFrac and DevFrac are the two fractional cut points over the
	// name-sorted document list. Documents with rank below TrainFrac*N go
	// to train, below DevFrac*N to dev, the rest to test.
	TrainFrac float64 `json:"train_frac" yaml:"train_frac"`
	DevFrac   float64 `json:"dev_frac" yaml:"dev_frac"`

	// DatasheetsDir is the base directory for datasheets (contains metadata/).
	DatasheetsDir string `json:"datasheets_dir" yaml:"datasheets_dir"`

	// CorpusDir is the base directory for corpus output (contains splits.yaml, index/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`
}

// ExtractConfig holds settings for the extraction stage.
type ExtractConfig struct {
	// CorpusDir is the base directory for corpus data (contains parsed/, extracted/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// MaxPairDistance is the maximum block separation between a part
	// mention and a figure mention for candidate pairing (default 3).
	MaxPairDistance int `json:"max_pair_distance" yaml:"max_pair_distance"`
}

// CorpusConfig holds settings for the corpus store.
type CorpusConfig struct {
	// CorpusDir is the base directory for corpus data (contains extracted/, index/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ReportConfig holds settings for corpus report generation.
type ReportConfig struct {
	// OutputDir is the directory for generated reports (e.g. "output/reports/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Conversion  ConversionConfig  `json:"conversion" yaml:"conversion"`
	Parse       ParseConfig       `json:"parse" yaml:"parse"`
	Split       SplitConfig       `json:"split" yaml:"split"`
	Extract     ExtractConfig     `json:"extract" yaml:"extract"`
	Corpus      CorpusConfig      `json:"corpus" yaml:"corpus"`
	Report      ReportConfig      `json:"report" yaml:"report"`
}
