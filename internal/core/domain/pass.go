package domain

// CompiledClass is one compiler output handed over by the build driver.
type CompiledClass struct {
	// Name is the internal class name, e.g. com/acme/Foo.
	Name string
	// Bytes is the raw class file.
	Bytes []byte
	// References lists classes the compiler resolved while compiling this class,
	// including owners of inlined constants that leave no trace in the bytecode.
	References []string
}

// Pass is one incremental build pass reported by the driver.
type Pass struct {
	ID      uint64
	Classes []CompiledClass
	// Removed holds the internal names of classes whose sources were deleted.
	Removed []string
}

// Reason explains why one class is in the recompilation set.
type Reason struct {
	Kind ReasonKind `json:"kind"`
	// Via is the class whose change triggered a dependent mark.
	Via string `json:"via,omitempty"`
}

// PassResult is the answer returned to the driver for one build pass.
type PassResult struct {
	Pass uint64 `json:"pass"`
	// Affected is the sorted set of classes that must be recompiled in the next pass.
	Affected []string          `json:"affected"`
	Reasons  map[string]Reason `json:"reasons"`
	// Changes holds the classification of every supplied class.
	Changes map[string]ChangeKind `json:"changes"`
	Removed []string              `json:"removed,omitempty"`
	Rounds  int                   `json:"rounds"`
	// Rebuild is set when the persisted cache was discarded and rebuilt from scratch.
	Rebuild   bool `json:"rebuild"`
	Committed bool `json:"committed"`
}

// Snapshot is the persisted form of the dependency cache.
type Snapshot struct {
	Generation uint32
	// Pass is the id of the last committed build pass.
	Pass uint64
	// Symbols holds interned strings ordered by id; Symbols[i] has id i+1.
	Symbols []string
	// Classes is ordered by class id.
	Classes []ClassInfo
}

// IsEmpty reports whether the snapshot holds no state.
func (s Snapshot) IsEmpty() bool {
	return len(s.Symbols) == 0 && len(s.Classes) == 0
}
