package main

import (
	"fmt"
	"io"
	"sort"
)

// listingSink is a reference reloc.SymbolSink: it just records every call
// so the demo can print a resolved-address listing after convergence,
// standing in for the debugger/listing consumer named in spec.md §6.
type listingSink struct {
	labels []labelEntry
	data   []dataEntry
	funcs  []funcEntry
	open   map[uint64]bool
}

type labelEntry struct {
	addr uint64
	name string
}

type dataEntry struct {
	addr, size uint64
	width      int
}

type funcEntry struct {
	start, end uint64
}

func newListingSink() *listingSink {
	return &listingSink{open: make(map[uint64]bool)}
}

// reset clears every recorded call, mirroring reloc.Engine's own per-pass
// diagnostic reset: only the most recent pass's addresses are meaningful.
func (s *listingSink) reset() {
	s.labels = s.labels[:0]
	s.data = s.data[:0]
	s.funcs = s.funcs[:0]
	for k := range s.open {
		delete(s.open, k)
	}
}

func (s *listingSink) AddLabel(addr uint64, name string) {
	s.labels = append(s.labels, labelEntry{addr, name})
}

func (s *listingSink) AddData(addr uint64, size uint64, width int) {
	s.data = append(s.data, dataEntry{addr, size, width})
}

func (s *listingSink) StartFunction(addr uint64) {
	s.open[addr] = true
}

func (s *listingSink) EndFunction(addr uint64) {
	for start := range s.open {
		if addr >= start {
			s.funcs = append(s.funcs, funcEntry{start, addr})
			delete(s.open, start)
			return
		}
	}
}

func (s *listingSink) dump(w io.Writer) {
	sort.Slice(s.labels, func(i, j int) bool { return s.labels[i].addr < s.labels[j].addr })
	for _, l := range s.labels {
		fmt.Fprintf(w, "%#08x  %s\n", l.addr, l.name)
	}
}
