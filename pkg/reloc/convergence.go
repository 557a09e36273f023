package reloc

import "hash/crc32"

// Relocate implements the Convergence Driver (spec.md §4.7): one pass over
// every loaded object in load order, followed by change detection against
// the previous pass's output. memoryAddress is the caller's base/size
// in-out parameter: on entry it names the address the first object should
// be laid out at; on return it holds the net size consumed by this pass.
//
// The host assembler is expected to call Relocate repeatedly while
// DataChanged() remains true, up to a convergence bound it enforces itself
// (spec.md §4.7); this method does not loop internally.
func (e *Engine) Relocate(memoryAddress *uint64) error {
	prevCRC := crc32.ChecksumIEEE(e.output)

	e.output = e.output[:0]
	e.dataChanged = false
	e.diag.reset()

	e.baseAddress = *memoryAddress
	e.relocationAddress = *memoryAddress

	for _, obj := range e.objects {
		bindObject(e, obj)
		layoutObject(e, obj)
		relocateObject(e, obj)
		finalizeObject(e, obj)
	}

	for _, obj := range e.objects {
		publishObject(e, obj)
	}

	if crc32.ChecksumIEEE(e.output) != prevCRC {
		e.dataChanged = true
	}

	*memoryAddress = e.relocationAddress - e.baseAddress

	if e.diag.hasErrors() {
		return errRelocationFailed
	}
	return nil
}

// DataChanged reports whether the most recent Relocate pass produced a
// different output buffer than the one before it (spec.md §4.7, §9
// "CRC-based change detection") or assigned any exportable symbol a
// different finalised address (spec.md §4.6).
func (e *Engine) DataChanged() bool {
	return e.dataChanged
}
