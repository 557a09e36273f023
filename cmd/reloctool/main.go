// Command reloctool is a small demo harness for package reloc. It is not
// part of the relocator's own scope (spec.md §1 explicitly leaves the
// host assembler's command-line surface out of bounds); it exists to make
// the engine runnable end-to-end, the way the teacher's rvld.go is a
// runnable driver for pkg/linker.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/haldor-asm/relocore/pkg/archbackend/generic32"
	"github.com/haldor-asm/relocore/pkg/reloc"
	"github.com/haldor-asm/relocore/pkg/symtable/memtable"
	"github.com/haldor-asm/relocore/pkg/utils"
)

// maxConvergencePasses is the bound the host assembler is responsible for
// enforcing (spec.md §4.7): this demo enforces one itself so a
// non-converging input cannot loop forever.
const maxConvergencePasses = 16

func main() {
	base, inputs := parseArgs(os.Args[1:])
	if len(inputs) == 0 {
		utils.Fatal("no input files")
	}

	backend := generic32.New()
	symtab := memtable.New()
	sink := newListingSink()

	engine, err := reloc.New(backend, symtab, sink)
	utils.MustNo(err)

	for _, path := range inputs {
		if err := engine.AddInput(path); err != nil {
			utils.Fatal(err)
		}
	}

	var addr uint64
	var pass int
	for pass = 0; pass < maxConvergencePasses; pass++ {
		sink.reset()
		// Relocate turns addr into the net size consumed, so every pass
		// starts again from the base address.
		addr = base
		if err := engine.Relocate(&addr); err != nil {
			for _, d := range engine.Diagnostics() {
				fmt.Fprintln(os.Stderr, d)
			}
			os.Exit(1)
		}
		if !engine.DataChanged() {
			break
		}
	}

	fmt.Printf("converged after %d pass(es), %d bytes\n", pass+1, addr)
	sink.dump(os.Stdout)
}

func parseArgs(args []string) (uint64, []string) {
	dashes := func(name string) []string {
		if len(name) == 1 {
			return []string{"-" + name}
		}
		return []string{"-" + name, "--" + name}
	}

	readArg := func(name string) (string, bool) {
		for _, opt := range dashes(name) {
			if len(args) > 0 && args[0] == opt {
				if len(args) == 1 {
					utils.Fatal(fmt.Sprintf("option -%s: argument missing", name))
				}
				v := args[1]
				args = args[2:]
				return v, true
			}
			prefix := opt + "="
			if len(args) > 0 && strings.HasPrefix(args[0], prefix) {
				v := args[0][len(prefix):]
				args = args[1:]
				return v, true
			}
		}
		return "", false
	}

	base := uint64(0x1000)
	var remaining []string

	for len(args) > 0 {
		if v, ok := readArg("base"); ok {
			n, err := strconv.ParseUint(v, 0, 64)
			utils.MustNo(err)
			base = n
			continue
		}
		if args[0][0] == '-' {
			utils.Fatal(fmt.Sprintf("unknown command line option: %s", args[0]))
		}
		remaining = append(remaining, args[0])
		args = args[1:]
	}

	return base, remaining
}
