// Package memtable is a reference github.com/haldor-asm/relocore/pkg/reloc.GlobalSymbolTable
// implementation: an in-memory map of lowercased names to labels, created
// on first lookup, exactly as spec.md §6 describes the contract. It stands
// in for a host assembler's own symbol table in the cmd/reloctool demo.
package memtable

import "github.com/haldor-asm/relocore/pkg/reloc"

// Table is a GlobalSymbolTable backed by a plain map. It is not safe for
// concurrent use, matching spec.md §5's single-threaded scheduling model.
type Table struct {
	labels map[string]*label
}

// New returns an empty Table.
func New() *Table {
	return &Table{labels: make(map[string]*label)}
}

// Lookup implements reloc.GlobalSymbolTable.
func (t *Table) Lookup(name string) (reloc.SymbolLabel, error) {
	if l, ok := t.labels[name]; ok {
		return l, nil
	}
	l := &label{name: name}
	t.labels[name] = l
	return l, nil
}

// label implements reloc.SymbolLabel. Its data/function classification is
// read back out of Info, which the binder populates from the architecture
// backend's TargetSymbolInfo — this table has no independent
// opinion about what a symbol is.
type label struct {
	name           string
	defined        bool
	value          uint64
	info           any
	skipInfoUpdate bool
}

func (l *label) IsDefined() bool { return l.defined }
func (l *label) Value() uint64   { return l.value }
func (l *label) Info() any       { return l.info }

func (l *label) IsData() bool {
	t, ok := l.info.(reloc.SymbolType)
	return ok && t == reloc.SymObject
}

func (l *label) IsFunction() bool {
	t, ok := l.info.(reloc.SymbolType)
	return ok && t == reloc.SymFunc
}

func (l *label) SetValue(v uint64) { l.value = v }

func (l *label) SetInfo(info any) {
	if l.skipInfoUpdate {
		return
	}
	l.info = info
}

func (l *label) SetDefined(defined bool)     { l.defined = defined }
func (l *label) SetSkipInfoUpdate(skip bool) { l.skipInfoUpdate = skip }
