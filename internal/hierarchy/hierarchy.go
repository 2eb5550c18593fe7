// Package hierarchy implements the static class-inheritance table (§3.6,
// §4.I): a compile-time list of (name, class_id, parent_name, is_stub)
// entries, registered parent-before-child, with precomputed parent-id lookup
// so derivation queries index into a flat table instead of walking strings.
//
// This is the one effectively-global, process-wide resource in the system
// (§9): built once at package init and read-only thereafter.
package hierarchy

import "fmt"

// RootClassID is the class id of the base class every other class derives
// from, directly or transitively.
const RootClassID uint32 = 1

// BeObjectClassID is the class id whose presence on a derivation chain
// switches a class's deserializer kind from "Object" to "BeObject" (§3.6).
const BeObjectClassID uint32 = 16

// Entry is one row of the static class table.
type Entry struct {
	Name       string
	ClassID    uint32
	ParentName string // "" only for the root entry
	IsStub     bool   // true: participates in inheritance, contributes no fields
}

// table is registered parent-before-child, mirroring real Virtools
// CK_CLASSID layout where the spec pins a value (CKSpriteText=29,
// CKMaterial=30, CKLight=38); other ids are this implementation's own
// assignment since spec.md does not name them and no reference corpus was
// available to confirm the historical numbering (see DESIGN.md).
var table = []Entry{
	{Name: "CKObject", ClassID: RootClassID, ParentName: "", IsStub: true},
	{Name: "CKBeObject", ClassID: BeObjectClassID, ParentName: "CKObject", IsStub: true},
	{Name: "CKSceneObject", ClassID: 18, ParentName: "CKBeObject", IsStub: true},
	{Name: "CKRenderObject", ClassID: 20, ParentName: "CKSceneObject", IsStub: true},
	{Name: "CK2dEntity", ClassID: 21, ParentName: "CKRenderObject", IsStub: true},
	{Name: "CK3dEntity", ClassID: 23, ParentName: "CKRenderObject", IsStub: true},
	{Name: "CKSpriteText", ClassID: 29, ParentName: "CK2dEntity", IsStub: false},
	{Name: "CKMaterial", ClassID: 30, ParentName: "CKObject", IsStub: false},
	{Name: "CKLight", ClassID: 38, ParentName: "CK3dEntity", IsStub: false},
	{Name: "CKMesh", ClassID: 40, ParentName: "CKBeObject", IsStub: false},
}

var (
	byID       = make(map[uint32]Entry, len(table))
	byName     = make(map[string]Entry, len(table))
	parentOfID = make(map[uint32]uint32, len(table))
)

func init() {
	for _, e := range table {
		if _, dup := byID[e.ClassID]; dup {
			panic(fmt.Sprintf("hierarchy: duplicate class id %d", e.ClassID))
		}
		byID[e.ClassID] = e
		byName[e.Name] = e
	}
	for _, e := range table {
		if e.ParentName == "" {
			continue
		}
		parent, ok := byName[e.ParentName]
		if !ok {
			panic(fmt.Sprintf("hierarchy: %q registered before its parent %q", e.Name, e.ParentName))
		}
		parentOfID[e.ClassID] = parent.ClassID
	}
}

// ByID looks up an entry by class id.
func ByID(classID uint32) (Entry, bool) {
	e, ok := byID[classID]
	return e, ok
}

// ByName looks up an entry by class name.
func ByName(name string) (Entry, bool) {
	e, ok := byName[name]
	return e, ok
}

// Parent returns the immediate parent entry of classID, if any (the root
// class has none).
func Parent(classID uint32) (Entry, bool) {
	pid, ok := parentOfID[classID]
	if !ok {
		return Entry{}, false
	}
	return ByID(pid)
}

// IsDerivedFrom reports whether classID derives from ancestorID, directly or
// transitively (a class is considered derived from itself).
func IsDerivedFrom(classID, ancestorID uint32) bool {
	for id, ok := classID, true; ok; id, ok = parentOfID[id] {
		if id == ancestorID {
			return true
		}
		if _, known := byID[id]; !known {
			return false
		}
	}
	return false
}

// UsesBeObjectDeserializer reports whether walking classID's parent chain
// reaches BeObjectClassID before reaching RootClassID (§3.6).
func UsesBeObjectDeserializer(classID uint32) bool {
	for id := classID; ; {
		if id == BeObjectClassID {
			return true
		}
		if id == RootClassID {
			return false
		}
		pid, ok := parentOfID[id]
		if !ok {
			return false
		}
		id = pid
	}
}

// DerivationLevel returns the number of hops from classID up to the root
// class (root itself is level 0).
func DerivationLevel(classID uint32) int {
	level := 0
	for id := classID; id != RootClassID; {
		pid, ok := parentOfID[id]
		if !ok {
			return level
		}
		id = pid
		level++
	}
	return level
}

// CommonAncestor returns the most derived class id that both a and b derive
// from.
func CommonAncestor(a, b uint32) (uint32, bool) {
	ancestorsOf := func(id uint32) []uint32 {
		var chain []uint32
		for {
			chain = append(chain, id)
			if id == RootClassID {
				break
			}
			pid, ok := parentOfID[id]
			if !ok {
				break
			}
			id = pid
		}
		return chain
	}
	bAncestors := make(map[uint32]bool)
	for _, id := range ancestorsOf(b) {
		bAncestors[id] = true
	}
	for _, id := range ancestorsOf(a) {
		if bAncestors[id] {
			return id, true
		}
	}
	return 0, false
}
