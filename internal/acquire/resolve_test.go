// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType IdentifierType
		wantNorm string
	}{
		{"vendor part", "ti:LM317", TypeVendorPart, "ti:lm317"},
		{"vendor part lowercase", "onsemi:2n7002", TypeVendorPart, "onsemi:2n7002"},
		{"vendor part mixed case", "st:TIP120", TypeVendorPart, "st:tip120"},
		{"unknown vendor", "acme:LM317", TypeUnknown, "acme:LM317"},
		{"url https", "https://example.com/bc547.pdf", TypeURL, "https://example.com/bc547.pdf"},
		{"url http", "http://example.com/bc547.pdf", TypeURL, "http://example.com/bc547.pdf"},
		{"local pdf", "downloads/lm317.pdf", TypeFile, "downloads/lm317.pdf"},
		{"local html", "./bc547.html", TypeFile, "./bc547.html"},
		{"local htm uppercase ext", "BC547.HTM", TypeFile, "BC547.HTM"},
		{"unknown bare word", "not-an-id", TypeUnknown, "not-an-id"},
		{"unknown empty", "", TypeUnknown, ""},
		{"whitespace trimmed", "  ti:LM317  ", TypeVendorPart, "ti:lm317"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotNorm := Classify(tt.input)
			if gotType != tt.wantType {
				t.Errorf("Classify(%q) type = %v, want %v", tt.input, gotType, tt.wantType)
			}
			if gotNorm != tt.wantNorm {
				t.Errorf("Classify(%q) norm = %q, want %q", tt.input, gotNorm, tt.wantNorm)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		idType   IdentifierType
		norm     string
		wantSlug string
	}{
		{"vendor part", TypeVendorPart, "ti:lm317", "lm317"},
		{"url with filename", TypeURL, "https://example.com/BC547.pdf", "bc547"},
		{"url no filename", TypeURL, "https://example.com/", "url-" + urlHashSlug("https://example.com/")[4:]},
		{"local file", TypeFile, "downloads/TIP120.pdf", "tip120"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slug(tt.idType, tt.norm)
			if got != tt.wantSlug {
				t.Errorf("Slug(%v, %q) = %q, want %q", tt.idType, tt.norm, got, tt.wantSlug)
			}
		})
	}
}

func TestDatasheetURL(t *testing.T) {
	tests := []struct {
		name    string
		idType  IdentifierType
		norm    string
		wantURL string
	}{
		{"vendor ti", TypeVendorPart, "ti:lm317", "https://www.ti.com/lit/ds/symlink/lm317.pdf"},
		{"vendor onsemi", TypeVendorPart, "onsemi:2n7002", "https://www.onsemi.com/download/data-sheet/pdf/2n7002-d.pdf"},
		{"url passthrough", TypeURL, "https://example.com/bc547.pdf", "https://example.com/bc547.pdf"},
		{"local file empty", TypeFile, "downloads/lm317.pdf", ""},
		{"unknown empty", TypeUnknown, "foo", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DatasheetURL(tt.idType, tt.norm)
			if got != tt.wantURL {
				t.Errorf("DatasheetURL(%v, %q) = %q, want %q", tt.idType, tt.norm, got, tt.wantURL)
			}
		})
	}
}

func TestManufacturer(t *testing.T) {
	if got := Manufacturer(TypeVendorPart, "ti:lm317"); got != "Texas Instruments" {
		t.Errorf("Manufacturer = %q, want %q", got, "Texas Instruments")
	}
	if got := Manufacturer(TypeURL, "https://example.com/x.pdf"); got != "" {
		t.Errorf("Manufacturer for URL = %q, want empty", got)
	}
}
