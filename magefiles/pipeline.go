//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func cli() string {
	return filepath.Join(binDir, binName)
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Convert runs the conversion stage over all acquired datasheets.
func Convert() error {
	mg.Deps(Build)
	return sh.RunV(cli(), "convert")
}

// Parse runs the HTML parsing stage.
func Parse() error {
	mg.Deps(Build)
	return sh.RunV(cli(), "parse")
}

// Split partitions the corpus into train, dev, and test sets.
func Split() error {
	mg.Deps(Build)
	return sh.RunV(cli(), "split")
}

// Extract runs mention extraction and candidate pairing.
func Extract() error {
	mg.Deps(Build)
	return sh.RunV(cli(), "extract")
}

// Index ingests extracted mentions into the corpus database.
func Index() error {
	mg.Deps(Build)
	return sh.RunV(cli(), "corpus", "store")
}

// Pipeline runs every stage after acquisition in order: convert, parse,
// split, extract, and index.
func Pipeline() error {
	mg.SerialDeps(Init, Convert, Parse, Split, Extract, Index)
	return nil
}
