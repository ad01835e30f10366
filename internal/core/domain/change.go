package domain

import "go.trai.ch/zerr"

// ChangeKind classifies how a class changed between two snapshots.
type ChangeKind uint8

const (
	// ChangeNone means the class is unchanged.
	ChangeNone ChangeKind = iota
	// ChangeConstantOnly means only compile-time constant values changed.
	ChangeConstantOnly
	// ChangeStructural means the supertype, interfaces or any member signature changed.
	ChangeStructural
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNone:
		return "none"
	case ChangeConstantOnly:
		return "constant"
	case ChangeStructural:
		return "structural"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ChangeKind) UnmarshalText(text []byte) error {
	for c := ChangeNone; c <= ChangeStructural; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return zerr.With(zerr.Wrap(ErrInvalidKind, "failed to decode change kind"), "kind", string(text))
}

// ReasonKind records why a class was marked for recompilation.
type ReasonKind uint8

const (
	// ReasonStructural marks a class whose own structure changed.
	ReasonStructural ReasonKind = iota + 1
	// ReasonConstant marks a class whose constant values changed.
	ReasonConstant
	// ReasonDependent marks a class that references an affected class.
	ReasonDependent
	// ReasonRemovedDependency marks a class that referenced a removed class.
	ReasonRemovedDependency
	// ReasonRebuild marks every class of a forced full rebuild.
	ReasonRebuild
)

func (k ReasonKind) String() string {
	switch k {
	case ReasonStructural:
		return "structural"
	case ReasonConstant:
		return "constant"
	case ReasonDependent:
		return "dependent"
	case ReasonRemovedDependency:
		return "removed-dependency"
	case ReasonRebuild:
		return "rebuild"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ReasonKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ReasonKind) UnmarshalText(text []byte) error {
	for r := ReasonStructural; r <= ReasonRebuild; r++ {
		if r.String() == string(text) {
			*k = r
			return nil
		}
	}
	return zerr.With(zerr.Wrap(ErrInvalidKind, "failed to decode reason kind"), "kind", string(text))
}
