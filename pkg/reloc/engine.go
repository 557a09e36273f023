package reloc

import (
	"fmt"

	"github.com/haldor-asm/relocore/pkg/utils"
)

// Engine is the relocator's own state (spec.md §5 "Ownership"): the
// parsed ELF objects, their backing buffers, the per-file symbol records,
// and the output buffer, from the first AddInput call until the Engine is
// discarded. It owns all of that; the backend, the global symbol table,
// and the symbol-data sink are long-lived, externally-owned borrows it
// must never free.
type Engine struct {
	Backend  ArchBackend
	SymTable GlobalSymbolTable
	Sink     SymbolSink

	objects []*Object
	visited utils.MapSet[string]

	output            []byte
	baseAddress       uint64
	relocationAddress uint64
	dataChanged       bool

	diag diagnosticQueue
}

// New constructs a Engine bound to the three external collaborators named
// in spec.md §6. An unregistered backend is an Environment error (spec.md
// §7) and is refused here rather than deferred to the first pass.
func New(backend ArchBackend, symtab GlobalSymbolTable, sink SymbolSink) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("reloc: no architecture backend registered")
	}
	if symtab == nil {
		return nil, fmt.Errorf("reloc: no global symbol table supplied")
	}
	if sink == nil {
		return nil, fmt.Errorf("reloc: no symbol-data sink supplied")
	}
	return &Engine{
		Backend: backend, SymTable: symtab, Sink: sink,
		visited: utils.NewMapSet[string](),
	}, nil
}

// AddInput loads path (bare ELF32 object or ar archive, spec.md §4.1) and
// parses every ELF-magic member into the Engine (spec.md §4.2). Structural
// failures abort this input and are returned immediately, per spec.md §7;
// they do not touch the diagnostic queue, which is reserved for semantic
// errors accumulated during relocation passes.
//
// Loading the same path twice is a no-op, mirroring the teacher's
// Context.Visited dedup for repeated library paths.
func (e *Engine) AddInput(path string) error {
	if e.visited.Contains(path) {
		return nil
	}
	e.visited.Add(path)

	members, err := LoadMembers(path)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return fmt.Errorf("reloc: %s: could not load as ELF32 object or ar archive", path)
	}
	for _, m := range members {
		obj, err := parseObject(m.Name, m.Contents)
		if err != nil {
			return err
		}
		e.objects = append(e.objects, obj)
	}
	return nil
}

// Output returns the current pass's laid-out byte image. The slice is
// only valid until the next call to Relocate, which replaces it.
func (e *Engine) Output() []byte {
	return e.output
}

// Diagnostics returns the semantic errors and warnings queued by the most
// recent Relocate pass (spec.md §7).
func (e *Engine) Diagnostics() []Diagnostic {
	return e.diag.snapshot()
}

func (e *Engine) growOutputTo(relocAddr uint64) {
	need := relocAddr - e.baseAddress
	if uint64(len(e.output)) < need {
		e.output = append(e.output, make([]byte, need-uint64(len(e.output)))...)
	}
}
