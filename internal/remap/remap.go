// Package remap holds the bidirectional runtime<->file object-id mapping in
// force during one load or save. Id 0 is the null sentinel and is never
// translated or recorded.
package remap

import "nmoscene/internal/nmoerr"

// Table is a pair of u32->u32 dictionaries. Not safe for concurrent use; owned
// by the load/save pipeline for exactly one file.
type Table struct {
	runtimeToFile map[uint32]uint32
	fileToRuntime map[uint32]uint32
}

// New returns an empty table.
func New() *Table {
	return &Table{
		runtimeToFile: make(map[uint32]uint32),
		fileToRuntime: make(map[uint32]uint32),
	}
}

// Set records a runtime<->file pair. A call with either side 0 is a no-op.
func (t *Table) Set(runtime, file uint32) {
	if runtime == 0 || file == 0 {
		return
	}
	t.runtimeToFile[runtime] = file
	t.fileToRuntime[file] = runtime
}

// ToFile translates a runtime id to its file id. 0 maps to 0 without lookup.
func (t *Table) ToFile(runtime uint32) (uint32, error) {
	if runtime == 0 {
		return 0, nil
	}
	file, ok := t.runtimeToFile[runtime]
	if !ok {
		return 0, nmoerr.NewCause("no file id for runtime id", -1, nmoerr.ErrNotFound)
	}
	return file, nil
}

// ToRuntime translates a file id to its runtime id. 0 maps to 0 without lookup.
func (t *Table) ToRuntime(file uint32) (uint32, error) {
	if file == 0 {
		return 0, nil
	}
	runtime, ok := t.fileToRuntime[file]
	if !ok {
		return 0, nmoerr.NewCause("no runtime id for file id", -1, nmoerr.ErrNotFound)
	}
	return runtime, nil
}

// Len returns the number of recorded pairs.
func (t *Table) Len() int { return len(t.runtimeToFile) }
