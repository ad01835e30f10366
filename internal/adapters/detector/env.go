// Package detector selects the report format from the environment.
package detector

import (
	"os"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// Format is the rendering format of command reports.
type Format int

const (
	// FormatAuto picks a format from the environment.
	FormatAuto Format = iota
	// FormatText renders human readable reports.
	FormatText
	// FormatJSON renders machine readable reports for build drivers.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// DetectEnvironment returns FormatText for interactive terminals and
// FormatJSON when stdout is redirected or CI is set.
func DetectEnvironment() Format {
	return detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) Format {
	if !isTTY || ci == "true" || ci == "1" {
		return FormatJSON
	}
	return FormatText
}

// ResolveFormat applies the --format flag to the detected format.
func ResolveFormat(detected Format, flag string) (Format, error) {
	switch flag {
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "auto", "":
		return detected, nil
	default:
		return FormatAuto, zerr.With(zerr.Wrap(domain.ErrInvalidFormat, "failed to resolve output format"), "format", flag)
	}
}
