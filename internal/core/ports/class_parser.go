package ports

import (
	"context"

	"go.trai.ch/depcache/internal/core/domain"
)

// ClassParser builds class metadata from compiled class bytes.
// There is one implementation per supported compiler backend.
//
//go:generate mockgen -source=class_parser.go -destination=mocks/mock_class_parser.go -package=mocks
type ClassParser interface {
	// Parse decodes in.Bytes and interns every name it references into symbols.
	// Structural errors in the bytes wrap domain.ErrInvalidClassFile.
	Parse(ctx context.Context, in domain.CompiledClass, symbols *domain.SymbolTable) (domain.ClassInfo, error)
}
