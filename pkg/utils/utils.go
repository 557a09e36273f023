package utils

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"runtime/debug"
)

// Fatal reports a programmer-error invariant violation and aborts the
// process. It must never be used for recoverable input errors (archive
// decode failures, ELF structural mismatches, relocation diagnostics) —
// those are returned as errors or queued as diagnostics by pkg/reloc. This
// is the one deliberate departure from the teacher, whose CLI used Fatal
// for every error kind; a library embedded in a host assembler cannot
// exit the host's process on a bad input file.
func Fatal(v any) {
	fmt.Println("relocore: "+"\033[0;1;31minternal error:\033[0m", fmt.Sprintf("%s", v))
	debug.PrintStack()
	os.Exit(1)
}

func Assert(condition bool) {
	if !condition {
		Fatal("assertion failed")
	}
}

func MustNo(err error) {
	if err != nil {
		Fatal(err)
	}
}

// AlignTo rounds val up to the next multiple of align. An align of zero is
// treated as 1 (spec.md §9 "Alignment zero"): some object producers emit
// sh_addralign == 0, and val mod 0 would fault.
func AlignTo(val, align uint64) uint64 {
	if align == 0 {
		return val
	}
	return (val + align - 1) & ^(align - 1)
}

// Read decodes a fixed-layout little-endian struct from the front of data.
func Read[T any](data []byte) (val T) {
	reader := bytes.NewReader(data)
	err := binary.Read(reader, binary.LittleEndian, &val)
	MustNo(err)
	return
}

// Write encodes e as little-endian bytes into the front of data.
func Write[T any](data []byte, e T) {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, binary.LittleEndian, e)
	MustNo(err)
	copy(data, buf.Bytes())
}

// RemoveIf compacts elems in place, keeping only entries for which
// condition is false, and returns the shortened slice.
func RemoveIf[T any](elems []T, condition func(T) bool) []T {
	i := 0
	for _, elem := range elems {
		if condition(elem) {
			continue
		}
		elems[i] = elem
		i++
	}
	return elems[:i]
}
