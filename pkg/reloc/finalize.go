package reloc

import (
	"debug/elf"

	"github.com/haldor-asm/relocore/pkg/utils"
)

// finalizeObject implements Symbol Address Finalisation (spec.md §4.6) for
// one object, after all of its sections have been laid out for this pass.
func finalizeObject(e *Engine, obj *Object) {
	for _, rsym := range obj.exportable {
		var final uint64

		switch rsym.Shndx {
		case uint16(elf.SHN_ABS):
			final = rsym.PreLayoutValue
		case uint16(elf.SHN_COMMON):
			e.relocationAddress = utils.AlignTo(e.relocationAddress, rsym.PreLayoutValue)
			final = e.relocationAddress
			e.relocationAddress += rsym.Size
			e.growOutputTo(e.relocationAddress)
		default:
			final = rsym.PreLayoutValue + obj.relocationOffsets[rsym.SectionIndex]
		}

		if final != rsym.PostLayoutValue {
			e.dataChanged = true
		}
		rsym.PostLayoutValue = final

		if rsym.Label != nil {
			rsym.Label.SetValue(final)
		}
	}
}
