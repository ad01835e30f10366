// Package report renders command results as colored text or JSON.
package report

import (
	"io"

	"go.trai.ch/depcache/internal/adapters/detector" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/depcache/internal/ui/output"
)

// New returns the reporter for format. FormatAuto renders text.
func New(w io.Writer, format detector.Format) ports.Reporter {
	if format == detector.FormatJSON {
		return NewJSON(w)
	}
	return NewText(output.New(w))
}
