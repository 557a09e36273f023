package reloc

import (
	"debug/elf"

	"github.com/haldor-asm/relocore/pkg/utils"
)

// layoutObject implements Layout (spec.md §4.4) for one object: every
// ALLOC PROGBITS/NOBITS section, in section-table order, is assigned the
// next address at or above the shared relocationAddress counter that
// satisfies its alignment. PROGBITS payload is copied into the output
// buffer unpatched here; relocateObject overwrites the patched bytes
// afterwards from a fresh copy of the original payload (spec.md §5
// "Mutation discipline" — a pass always starts from pristine section
// bytes, never from a previous pass's output).
func layoutObject(e *Engine, obj *Object) {
	for _, sec := range obj.sections {
		if sec == nil || !sec.layoutEligible() {
			continue
		}

		e.relocationAddress = utils.AlignTo(e.relocationAddress, sec.Align)
		obj.relocationOffsets[sec.index] = e.relocationAddress
		e.relocationAddress += sec.Size

		e.growOutputTo(e.relocationAddress)

		if sec.Type == uint32(elf.SHT_PROGBITS) && sec.Size > 0 {
			base := obj.relocationOffsets[sec.index] - e.baseAddress
			copy(e.output[base:base+sec.Size], sec.Payload)
		}
	}
}
