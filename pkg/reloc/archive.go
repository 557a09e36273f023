package reloc

import (
	"fmt"
	"unsafe"

	"github.com/haldor-asm/relocore/pkg/utils"
)

const arGlobalHeader = "!<arch>\n"

// ArchiveMember is one decoded member of an ar archive, or the sole
// element produced when loading a bare ELF blob (spec.md §3 "Archive
// Member").
type ArchiveMember struct {
	Name     string
	Contents []byte
}

// parseArchive implements the Archive Reader (spec.md §4.1). Only members
// whose first four payload bytes are the ELF magic are returned; the
// symbol-index member, the long-name string table member, and anything
// else is silently skipped.
func parseArchive(contents []byte) ([]ArchiveMember, error) {
	hdrSize := int(unsafe.Sizeof(arHdr{}))
	pos := len(arGlobalHeader)

	var strtab []byte
	var members []ArchiveMember

	for pos+2 <= len(contents) {
		if pos+hdrSize > len(contents) {
			return nil, fmt.Errorf("ar: truncated member header at offset %d", pos)
		}

		hdr := utils.Read[arHdr](contents[pos:])
		body := pos + hdrSize
		size, err := hdr.size()
		if err != nil {
			return nil, err
		}
		if body+size > len(contents) {
			return nil, fmt.Errorf("ar: member at offset %d overruns archive (size %d)", pos, size)
		}
		memberBody := contents[body : body+size]

		next := body + size
		if size%2 == 1 {
			next++ // one padding byte, per spec.md §4.1
		}

		switch {
		case hdr.isStrtab():
			strtab = memberBody
		case hdr.isSymtab():
			// Never consulted (spec.md §6): no .a index member is used.
		default:
			name, consumed, err := hdr.readName(strtab, memberBody)
			if err != nil {
				return nil, err
			}
			payload := memberBody[consumed:]
			if hasELFMagic(payload) {
				members = append(members, ArchiveMember{Name: name, Contents: payload})
			}
		}

		pos = next
	}

	return members, nil
}
