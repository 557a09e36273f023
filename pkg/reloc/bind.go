package reloc

// bindObject implements the Symbol Binder (spec.md §4.3 exportSymbols)
// for a single object's exportable symbols.
func bindObject(e *Engine, obj *Object) {
	for _, rsym := range obj.exportable {
		if rsym.Label != nil {
			// Idempotent across convergence passes (step 1).
			continue
		}

		label, err := e.SymTable.Lookup(rsym.Name)
		if err != nil {
			e.diag.errorf("%s: cannot create label %q: %v", obj.Name, rsym.Name, err)
			continue
		}

		if label.IsDefined() {
			e.diag.errorf("%s: %q already defined", obj.Name, rsym.Name)
			// Left unbound, so finalisation never overwrites the other
			// definition's value and every pass reports the duplicate.
			continue
		}

		data := &RelocationData{}
		e.Backend.SetSymbolAddress(data, rsym.PreLayoutValue, rsym.Type)
		rsym.Info = data.TargetSymbolInfo

		label.SetInfo(data.TargetSymbolInfo)
		label.SetDefined(true)
		label.SetValue(0)
		label.SetSkipInfoUpdate(true)

		rsym.Label = label
	}
}
