package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/depcache/internal/ui/style"
)

// messager matches the Message and Metadata methods of zerr.Error.
type messager interface {
	Message() string
	Metadata() map[string]any
}

// ErrorEntry is one rendered level of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries flattens err into one entry per message.
// zerr levels without a message contribute their metadata to the next entry.
// Joined errors are expanded branch by branch.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	emit := func(entry ErrorEntry) {
		entry.Metadata = merge(entry.Metadata, pending)
		pending = nil
		entries = append(entries, entry)
	}

	current := err
	for current != nil {
		if m, ok := current.(messager); ok {
			if m.Message() == "" {
				pending = merge(pending, m.Metadata())
			} else {
				emit(ErrorEntry{Message: m.Message(), Metadata: m.Metadata()})
			}
			current = errors.Unwrap(current)
			continue
		}

		if joined, ok := current.(interface{ Unwrap() []error }); ok {
			for _, branch := range joined.Unwrap() {
				for _, entry := range collectErrorEntries(branch) {
					emit(entry)
				}
			}
			break
		}

		emit(ErrorEntry{Message: current.Error()})
		break
	}

	if pending != nil && len(entries) > 0 {
		entries[len(entries)-1].Metadata = merge(entries[len(entries)-1].Metadata, pending)
	}
	return entries
}

// hoistSubject moves the first pass and class values found in entries out of
// their metadata and returns them as slog attributes.
func hoistSubject(entries []ErrorEntry) []any {
	var attrs []any
	for _, key := range subjectKeys {
		for i := range entries {
			value, ok := entries[i].Metadata[key]
			if !ok {
				continue
			}
			entries[i].Metadata = maps.Clone(entries[i].Metadata)
			delete(entries[i].Metadata, key)
			attrs = append(attrs, key, value)
			break
		}
	}
	return attrs
}

func merge(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		if len(dst) == 0 {
			return nil
		}
		return dst
	}
	out := make(map[string]any, len(dst)+len(src))
	maps.Copy(out, dst)
	maps.Copy(out, src)
	return out
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

// formatErrorEntries renders entries as "Error: ..." followed by a "Caused by:" list.
// Metadata is printed below its message, sorted by key.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		head, indent := "    "+style.Arrow+" ", "      "
		if i == 0 {
			head, indent = "Error: ", "       "
		} else if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}

		lines = append(lines, head+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		for _, key := range sortedKeys(entry.Metadata) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, entry.Metadata[key]))
		}
	}

	return strings.Join(lines, "\n")
}
