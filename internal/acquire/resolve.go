// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// IdentifierType classifies an input identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeVendorPart
	TypeURL
	TypeFile
)

func (t IdentifierType) String() string {
	switch t {
	case TypeVendorPart:
		return "vendor"
	case TypeURL:
		return "url"
	case TypeFile:
		return "file"
	default:
		return "unknown"
	}
}

// vendorURLPatterns maps a vendor key to the datasheet URL template for a
// part number. Templates take the lowercased part number. Declared as a
// var so tests can substitute httptest servers.
var vendorURLPatterns = map[string]string{
	"ti":       "https://www.ti.com/lit/ds/symlink/%s.pdf",
	"onsemi":   "https://www.onsemi.com/download/data-sheet/pdf/%s-d.pdf",
	"st":       "https://www.st.com/resource/en/datasheet/%s.pdf",
	"vishay":   "https://www.vishay.com/docs/%s.pdf",
	"nxp":      "https://www.nxp.com/docs/en/data-sheet/%s.pdf",
	"infineon": "https://www.infineon.com/dgdl/%s-datasheet.pdf",
	"diodes":   "https://www.diodes.com/assets/Datasheets/%s.pdf",
}

// vendorNames maps a vendor key to the manufacturer name recorded in
// metadata.
var vendorNames = map[string]string{
	"ti":       "Texas Instruments",
	"onsemi":   "onsemi",
	"st":       "STMicroelectronics",
	"vishay":   "Vishay",
	"nxp":      "NXP",
	"infineon": "Infineon",
	"diodes":   "Diodes Incorporated",
}

// vendorPartPattern matches vendor-qualified part identifiers:
// "ti:LM317", "onsemi:2N7002".
var vendorPartPattern = regexp.MustCompile(`^([a-z]+):([A-Za-z0-9][A-Za-z0-9._-]*)$`)

// Classify determines the identifier type and returns the normalized form.
// Vendor parts normalize to "vendor:part" with the part lowercased. Local
// files are recognized by a .pdf, .html, or .htm extension.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if m := vendorPartPattern.FindStringSubmatch(identifier); m != nil {
		if _, ok := vendorURLPatterns[m[1]]; ok {
			return TypeVendorPart, m[1] + ":" + strings.ToLower(m[2])
		}
	}

	if u, err := url.Parse(identifier); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return TypeURL, identifier
	}

	switch strings.ToLower(filepath.Ext(identifier)) {
	case ".pdf", ".html", ".htm":
		return TypeFile, identifier
	}

	return TypeUnknown, identifier
}

// Slug returns a filesystem-safe filename stem for the identifier.
func Slug(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeVendorPart:
		_, part, _ := strings.Cut(normalized, ":")
		return part
	case TypeURL:
		u, err := url.Parse(normalized)
		if err != nil {
			return urlHashSlug(normalized)
		}
		base := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
		if base == "" || base == "." || base == "/" {
			return urlHashSlug(normalized)
		}
		return strings.ToLower(base)
	case TypeFile:
		base := filepath.Base(normalized)
		return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	default:
		return "unknown"
	}
}

// DatasheetURL returns the download URL for the identifier, or "" when
// the identifier does not resolve to a URL (local files, unknown types).
func DatasheetURL(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeVendorPart:
		vendor, part, _ := strings.Cut(normalized, ":")
		pattern, ok := vendorURLPatterns[vendor]
		if !ok {
			return ""
		}
		return fmt.Sprintf(pattern, part)
	case TypeURL:
		return normalized
	default:
		return ""
	}
}

// Manufacturer returns the manufacturer name for a vendor part
// identifier, or "" for other identifier types.
func Manufacturer(idType IdentifierType, normalized string) string {
	if idType != TypeVendorPart {
		return ""
	}
	vendor, _, _ := strings.Cut(normalized, ":")
	return vendorNames[vendor]
}

func urlHashSlug(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return fmt.Sprintf("url-%x", h[:8])
}
