package reloc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// LoadMembers reads path and decodes it into an ordered list of archive
// members (spec.md §4.1 "Recognition"). A bare ELF blob yields one member
// named after the file's basename; an ar archive yields its ELF-magic
// members in archive order; anything else yields an empty list, which the
// caller treats as "could not load library" rather than an error.
func LoadMembers(path string) ([]ArchiveMember, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reloc: %s: %w", path, err)
	}
	return loadMembersFromBytes(path, contents)
}

func loadMembersFromBytes(path string, contents []byte) ([]ArchiveMember, error) {
	switch {
	case bytes.HasPrefix(contents, []byte(arGlobalHeader)):
		return parseArchive(contents)
	case hasELFMagic(contents):
		return []ArchiveMember{{Name: filepath.Base(path), Contents: contents}}, nil
	default:
		return nil, nil
	}
}
