// Package classes implements the per-class schemas (§4.J): for each concrete
// scene class, a deserialize/serialize/finish-loading triple plus the
// identifier catalog it reads and writes. Classes are registered against the
// static hierarchy table (internal/hierarchy) so a caller can look up the
// triple for a class id encountered in an object directory entry.
//
// Canonical shape, per spec: deserialize first calls the parent class's
// deserialize on the same chunk (identifiers never collide across the
// hierarchy — each level owns a disjoint namespace), then seeks each
// identifier it knows about, applying documented defaults when one is
// absent; validation is deferred to finish-loading. Serialize is the dual:
// parent first, then one write_identifier + field writers per populated
// section.
package classes

import (
	"log/slog"

	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
	"nmoscene/internal/hierarchy"
	"nmoscene/internal/logging"
)

// Class bundles one concrete class's (de)serialization triple with the
// identifiers its deserialize/serialize functions gate on.
type Class struct {
	Entry         hierarchy.Entry
	Deserialize   func(r *reader.Reader) (any, error)
	Serialize     func(w *writer.Writer, state any) error
	FinishLoading func(state any) (any, error)
	Identifiers   []uint32
}

var registry = map[uint32]*Class{}

// Register adds (or replaces) the schema for one class id.
func Register(c *Class) { registry[c.Entry.ClassID] = c }

// Lookup returns the registered schema for classID.
func Lookup(classID uint32) (*Class, bool) {
	c, ok := registry[classID]
	return c, ok
}

// init registers the stub classes (no fields of their own, see
// internal/hierarchy) and the four concrete classes spec.md §4.J names
// exactly: CKMaterial, CKLight, CKMesh, CKSpriteText.
func init() {
	for _, e := range []hierarchy.Entry{
		mustEntry("CKObject"), mustEntry("CKBeObject"), mustEntry("CKSceneObject"),
		mustEntry("CKRenderObject"), mustEntry("CK2dEntity"), mustEntry("CK3dEntity"),
	} {
		e := e
		Register(&Class{
			Entry:         e,
			Deserialize:   func(r *reader.Reader) (any, error) { return struct{}{}, nil },
			Serialize:     func(w *writer.Writer, state any) error { return nil },
			FinishLoading: func(state any) (any, error) { return state, nil },
		})
	}
	RegisterMaterial()
	RegisterLight()
	RegisterMesh()
	RegisterSpriteText()
}

func mustEntry(name string) hierarchy.Entry {
	e, ok := hierarchy.ByName(name)
	if !ok {
		panic("classes: unknown hierarchy entry " + name)
	}
	return e
}

// Load runs a class's full lifecycle (deserialize then finish-loading) as
// described by the state machine in §4.J: fresh -> partial -> ready, or
// -> invalid on any error. An invalid result is discarded by the caller; the
// chunk's own IDs list (populated by the reader as it goes) is preserved
// regardless, so the caller can still reason about what was referenced.
func Load(classID uint32, r *reader.Reader, logger *slog.Logger) (any, error) {
	logger = logging.Default(logger).With("component", "classes", "class_id", classID)
	c, ok := Lookup(classID)
	if !ok {
		logger.Debug("no schema registered for class, skipping field decode")
		return nil, nil
	}
	state, err := c.Deserialize(r)
	if err != nil {
		logger.Warn("deserialize failed", "error", err)
		return nil, err
	}
	state, err = c.FinishLoading(state)
	if err != nil {
		logger.Warn("finish_loading failed", "error", err)
		return nil, err
	}
	return state, nil
}

// Save runs a class's serialize step.
func Save(classID uint32, w *writer.Writer, state any) error {
	c, ok := Lookup(classID)
	if !ok {
		return nil
	}
	return c.Serialize(w, state)
}
