package schema

import (
	"fmt"
	"log/slog"

	"nmoscene/internal/chunk"
	"nmoscene/internal/logging"
	"nmoscene/internal/nmoerr"
)

// Registry is the runtime type store: a class-id-indexed and name-indexed
// table of type descriptors, plus a secondary parameter-GUID index built by
// scanning the registry once every type has been added (§4.F).
//
// The registry is populated once at process/compilation-unit startup and
// treated as immutable thereafter (§5): concurrent reads are safe, concurrent
// writes are not synchronized.
type Registry struct {
	logger *slog.Logger

	byID   map[uint32]*Type
	byName map[string]*Type
	byGUID map[chunk.GUID]*Type
}

// NewRegistry returns an empty registry. A nil logger discards log output.
func NewRegistry(logger *slog.Logger) *Registry {
	logger = logging.Default(logger).With("component", "schema.registry")
	return &Registry{
		logger: logger,
		byID:   make(map[uint32]*Type),
		byName: make(map[string]*Type),
		byGUID: make(map[chunk.GUID]*Type),
	}
}

// Add registers t under classID and its own Name. Re-registering the same
// classID replaces the previous descriptor (used by idempotent init
// functions that may run more than once against the same registry).
func (r *Registry) Add(classID uint32, t *Type) {
	r.byID[classID] = t
	if t == nil {
		return
	}
	if t.Name != "" {
		r.byName[t.Name] = t
	}
	r.logger.Debug("schema registered", "class_id", classID, "name", t.Name, "kind", t.Kind.String())
}

// FindByID looks up a type descriptor by class id.
func (r *Registry) FindByID(classID uint32) (*Type, bool) {
	t, ok := r.byID[classID]
	return t, ok
}

// FindByName looks up a type descriptor by name.
func (r *Registry) FindByName(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Count returns the number of class-id-indexed descriptors.
func (r *Registry) Count() int { return len(r.byID) }

// Clear empties the registry, including the base-type registrations and the
// parameter-GUID index.
func (r *Registry) Clear() {
	r.byID = make(map[uint32]*Type)
	r.byName = make(map[string]*Type)
	r.byGUID = make(map[chunk.GUID]*Type)
}

// VerifyConsistency checks that every struct field's type reference resolves
// (is non-nil) and, for types carrying parameter metadata whose DerivedFrom
// points at another registered type, that the chain does not contain a
// cycle.
func (r *Registry) VerifyConsistency() error {
	for id, t := range r.byID {
		if err := verifyType(t, make(map[*Type]bool)); err != nil {
			return nmoerr.NewCause(fmt.Sprintf("class id %d (%s): inconsistent schema", id, t.Name), -1, err)
		}
	}
	return nil
}

func verifyType(t *Type, seen map[*Type]bool) error {
	if t == nil {
		return fmt.Errorf("nil type descriptor: %w", nmoerr.ErrInvalidFormat)
	}
	switch t.Kind {
	case KindStruct:
		for _, f := range t.Fields {
			if f.Type == nil {
				return fmt.Errorf("field %q has no type", f.Name)
			}
		}
	case KindArray, KindFixedArray:
		if t.Element == nil {
			return fmt.Errorf("array type %q has no element type", t.Name)
		}
	}
	if t.Param != nil && t.Param.DerivedFrom != nil {
		if seen[t] {
			return fmt.Errorf("parameter type %q: derived_from cycle", t.Name)
		}
		seen[t] = true
		return verifyType(t.Param.DerivedFrom, seen)
	}
	return nil
}

// BuildParamTable (re)builds the parameter-GUID index by scanning every
// registered type for a non-nil Param block. Call after all types have been
// added; safe to call more than once (e.g. after a later Add).
func (r *Registry) BuildParamTable() {
	r.byGUID = make(map[chunk.GUID]*Type)
	for _, t := range r.byID {
		if t.Param != nil && !t.Param.GUID.IsZero() {
			r.byGUID[t.Param.GUID] = t
		}
	}
}

// FindByGUID looks up a type descriptor by its parameter GUID.
func (r *Registry) FindByGUID(g chunk.GUID) (*Type, bool) {
	t, ok := r.byGUID[g]
	return t, ok
}

// CompatibleWith reports whether the type registered under g is the same
// type as, or derived from, the type registered under ancestor, by walking
// Param.DerivedFrom.
func (r *Registry) CompatibleWith(g, ancestor chunk.GUID) bool {
	t, ok := r.byGUID[g]
	if !ok {
		return false
	}
	anc, ok := r.byGUID[ancestor]
	if !ok {
		return false
	}
	for cur := t; cur != nil; {
		if cur == anc {
			return true
		}
		if cur.Param == nil {
			return false
		}
		cur = cur.Param.DerivedFrom
	}
	return false
}
