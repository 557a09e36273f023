package reloc

// publishObject implements the Symbol Publisher (spec.md §4.8) for one
// object's exportable symbols, after finalisation has assigned each one
// its address for this pass.
func publishObject(e *Engine, obj *Object) {
	for _, rsym := range obj.exportable {
		addr := rsym.PostLayoutValue
		e.Sink.AddLabel(addr, rsym.Name)

		switch rsym.Type {
		case SymObject:
			e.Sink.AddData(addr, rsym.Size, 1)
		case SymFunc:
			e.Sink.StartFunction(addr)
			e.Sink.EndFunction(addr + rsym.Size)
		}
	}
}
