package reloc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// arHdr is the fixed-width, space-padded ar member header (spec.md §4.1),
// adapted from the teacher's ArHdr.
type arHdr struct {
	Name  [16]byte
	Mtime [12]byte
	Uid   [6]byte
	Gid   [6]byte
	Mode  [8]byte
	Size  [10]byte
	Magic [2]byte
}

func (h *arHdr) startsWith(s string) bool {
	return len(s) <= len(h.Name) && string(h.Name[:len(s)]) == s
}

// isStrtab identifies the GNU/SysV extended-filename table member (spec.md
// §9 Open Question: supported here since the teacher supports it and it
// costs little).
func (h *arHdr) isStrtab() bool {
	return h.startsWith("// ")
}

// isSymtab identifies the archive symbol-index member, which spec.md §6
// says is never consulted.
func (h *arHdr) isSymtab() bool {
	return h.startsWith("/ ") || h.startsWith("/SYM64/ ")
}

func (h *arHdr) size() (int, error) {
	s := strings.TrimSpace(string(h.Size[:]))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("ar: malformed member size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("ar: negative member size %d", n)
	}
	return n, nil
}

// readName resolves the member name per spec.md §4.1 (short SysV names,
// trailing "/" stripped) plus the two long-name extensions recovered from
// the teacher for completeness against real system archives: BSD inline
// "#1/<len>" names (consuming len bytes from the member body) and SysV
// "/<offset>" indirection into the "//" string-table member. body is the
// member's payload, used only for the BSD case; the returned int is how
// many leading bytes of body were consumed as an inline name.
func (h *arHdr) readName(strtab []byte, body []byte) (string, int, error) {
	if h.startsWith("#1/") {
		lenStr := strings.TrimSpace(string(h.Name[3:]))
		n, err := strconv.Atoi(lenStr)
		if err != nil {
			return "", 0, fmt.Errorf("ar: malformed BSD long name length %q: %w", lenStr, err)
		}
		if n < 0 || n > len(body) {
			return "", 0, fmt.Errorf("ar: BSD long name length %d out of range", n)
		}
		name := body[:n]
		if end := bytes.IndexByte(name, 0); end != -1 {
			name = name[:end]
		}
		return string(name), n, nil
	}

	if h.startsWith("/") && h.Name[1] != ' ' {
		offStr := strings.TrimSpace(string(h.Name[1:]))
		off, err := strconv.Atoi(offStr)
		if err != nil {
			return "", 0, fmt.Errorf("ar: malformed long-name offset %q: %w", offStr, err)
		}
		if off < 0 || off >= len(strtab) {
			return "", 0, fmt.Errorf("ar: long-name offset %d out of range", off)
		}
		end := bytes.Index(strtab[off:], []byte("/\n"))
		if end == -1 {
			return "", 0, fmt.Errorf("ar: unterminated long-name table entry at %d", off)
		}
		return string(strtab[off : off+end]), 0, nil
	}

	if end := bytes.IndexByte(h.Name[:], '/'); end != -1 {
		return string(h.Name[:end]), 0, nil
	}
	return strings.TrimRight(string(h.Name[:]), " "), 0, nil
}
