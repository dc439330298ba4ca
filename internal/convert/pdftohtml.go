// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
)

const binPdftohtml = "pdftohtml"

// runPiped abstracts command execution for testing.
type runPiped func(name string, args []string, stdout io.Writer) error

func execRunPiped(name string, args []string, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	return cmd.Run()
}

// PdftohtmlConverter converts PDFs with the poppler pdftohtml binary,
// producing a single HTML document on stdout.
type PdftohtmlConverter struct {
	run runPiped
}

// NewPdftohtmlConverter creates a converter backed by the pdftohtml
// binary. It verifies the binary exists on PATH before returning.
func NewPdftohtmlConverter() (*PdftohtmlConverter, error) {
	if _, err := exec.LookPath(binPdftohtml); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binPdftohtml, err)
	}
	return &PdftohtmlConverter{run: execRunPiped}, nil
}

// Convert runs pdftohtml over the PDF at rawPath and returns the HTML.
func (p *PdftohtmlConverter) Convert(rawPath string) (string, error) {
	args := []string{"-i", "-noframes", "-stdout", rawPath}

	var out bytes.Buffer
	if err := p.run(binPdftohtml, args, &out); err != nil {
		return "", fmt.Errorf("converting %s with %s: %w", rawPath, binPdftohtml, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("%s produced empty output for %s", binPdftohtml, rawPath)
	}

	return out.String(), nil
}
