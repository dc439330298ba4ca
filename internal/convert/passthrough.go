// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
)

// Passthrough copies HTML raws into the output unchanged. Used for
// datasheets that were acquired as HTML in the first place.
type Passthrough struct{}

// Convert reads the HTML file at rawPath and returns its content.
func (Passthrough) Convert(rawPath string) (string, error) {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return "", fmt.Errorf("reading HTML %s: %w", rawPath, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty HTML file %s", rawPath)
	}
	return string(data), nil
}
