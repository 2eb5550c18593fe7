// Package nmo is the public entry point: it wires the envelope, id-remap,
// chunk reader/writer, and per-class schemas together into whole-file
// Load/Save operations, the one surface spec.md's components are built to
// serve together (§2's data-flow diagram).
package nmo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"nmoscene/internal/chunk"
	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
	"nmoscene/internal/classes"
	"nmoscene/internal/engine"
	"nmoscene/internal/envelope"
	"nmoscene/internal/logging"
	"nmoscene/internal/nmoerr"
	"nmoscene/internal/remap"
	"nmoscene/internal/schema"
)

// registry is the process-wide schema.Registry (component F): base scalar
// and math types (component G) plus every class registered in
// internal/classes, bridged in via classes.RegisterInto so a class id looked
// up here drives decode/encode through internal/engine's vtable fast path
// (component H) rather than calling classes.Load/Save directly.
var registry = buildRegistry()

func buildRegistry() *schema.Registry {
	reg := schema.NewRegistry(nil)
	schema.RegisterMathTypes(reg)
	classes.RegisterInto(reg)
	reg.BuildParamTable()
	if err := reg.VerifyConsistency(); err != nil {
		panic("nmo: schema registry failed consistency check: " + err.Error())
	}
	return reg
}

// Object is one loaded object: its directory descriptor, the chunk identity
// fields needed to re-encode it, and its decoded class state (nil for a
// reference-only descriptor, or for a class with no registered schema).
type Object struct {
	envelope.ObjectDescriptor
	DataVersion  uint8
	ChunkClassID uint8
	ChunkVersion uint8
	State        any
}

// Scene is a fully decoded file: its envelope metadata plus every object's
// decoded state.
type Scene struct {
	FileVersion uint32
	Header1     envelope.Header1
	Managers    []envelope.ManagerRecord
	Objects     []Object
}

// Options configures a Load/Save call.
type Options struct {
	Logger *slog.Logger
}

// Load reads path and decodes it into a Scene.
func Load(path string, opts Options) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nmoerr.NewCause(fmt.Sprintf("open %s", path), -1, nmoerr.ErrFileNotFound)
		}
		return nil, nmoerr.NewCause(fmt.Sprintf("read %s", path), -1, nmoerr.ErrCantRead)
	}
	return LoadBytes(data, opts)
}

// LoadBytes decodes an in-memory file image into a Scene.
func LoadBytes(data []byte, opts Options) (*Scene, error) {
	logger := logging.Default(opts.Logger).With("component", "nmo")

	env, err := envelope.Parse(data)
	if err != nil {
		logger.Warn("envelope parse failed", "error", err)
		return nil, err
	}
	logger.Info("envelope parsed", "file_version", env.FileVersion,
		"object_count", len(env.Header1.Objects), "manager_count", len(env.Managers))

	rt := remap.New()
	byFileID := make(map[uint32]envelope.ObjectDescriptor, len(env.Header1.Objects))
	nonRef := make([]envelope.ObjectDescriptor, 0, len(env.Header1.Objects))
	for _, o := range env.Header1.Objects {
		byFileID[o.FileID] = o
		if o.FileID != 0 {
			rt.Set(o.FileID, o.FileID)
		}
		if !o.ReferenceOnly {
			nonRef = append(nonRef, o)
		}
	}

	objects := make([]Object, 0, len(env.Objects))
	for i, rec := range env.Objects {
		var desc envelope.ObjectDescriptor
		if env.FileVersion < 7 {
			desc = byFileID[rec.ObjectID]
		} else if i < len(nonRef) {
			desc = nonRef[i]
		}
		rec.Chunk.ClassID = desc.ClassID

		rd := reader.New(rec.Chunk).WithRemap(rt)
		var state any
		if t, ok := registry.FindByID(desc.ClassID); ok {
			if err := engine.Read(rd, t, &state, int(rec.Chunk.DataVersion)); err != nil {
				logger.Warn("object decode failed, state discarded", "file_id", desc.FileID, "class_id", desc.ClassID, "error", err)
				state = nil
			}
		} else {
			logger.Debug("no schema registered for class, skipping field decode", "file_id", desc.FileID, "class_id", desc.ClassID)
		}

		objects = append(objects, Object{
			ObjectDescriptor: desc,
			DataVersion:      rec.Chunk.DataVersion,
			ChunkClassID:     rec.Chunk.ChunkClassID,
			ChunkVersion:     rec.Chunk.ChunkVersion,
			State:            state,
		})
	}

	return &Scene{
		FileVersion: env.FileVersion,
		Header1:     env.Header1,
		Managers:    env.Managers,
		Objects:     objects,
	}, nil
}

// Save encodes scene and writes it to path.
func Save(path string, scene *Scene, opts Options) error {
	data, err := SaveBytes(scene, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nmoerr.NewCause(fmt.Sprintf("write %s", path), -1, nmoerr.ErrCantWrite)
	}
	return nil
}

// SaveBytes encodes scene into an in-memory file image.
func SaveBytes(scene *Scene, opts Options) ([]byte, error) {
	logger := logging.Default(opts.Logger).With("component", "nmo")

	rt := remap.New()
	for _, o := range scene.Header1.Objects {
		if o.FileID != 0 {
			rt.Set(o.FileID, o.FileID)
		}
	}

	byFileID := make(map[uint32]Object, len(scene.Objects))
	for _, o := range scene.Objects {
		byFileID[o.FileID] = o
	}

	records := make([]envelope.ObjectRecord, 0, len(scene.Header1.Objects))
	for _, desc := range scene.Header1.Objects {
		if desc.ReferenceOnly {
			continue
		}
		obj, ok := byFileID[desc.FileID]
		if !ok {
			logger.Warn("object descriptor has no loaded state, writing empty chunk", "file_id", desc.FileID)
			records = append(records, envelope.ObjectRecord{ObjectID: desc.FileID, Chunk: chunk.New()})
			continue
		}

		w := writer.New(desc.ClassID, obj.DataVersion, obj.ChunkClassID, obj.ChunkVersion).WithRemap(rt)
		if t, ok := registry.FindByID(desc.ClassID); ok && obj.State != nil {
			if err := engine.Write(w, t, obj.State, int(obj.DataVersion)); err != nil {
				return nil, fmt.Errorf("encode object %d: %w", desc.FileID, err)
			}
		}
		c, err := w.Finalize()
		if err != nil {
			return nil, err
		}
		c.ClassID = desc.ClassID
		c.Options.Set(chunk.OptFILE)
		records = append(records, envelope.ObjectRecord{ObjectID: desc.FileID, Chunk: c})
	}

	env := &envelope.File{
		FileVersion: scene.FileVersion,
		Header1:     scene.Header1,
		Managers:    scene.Managers,
		Objects:     records,
	}
	out, err := env.Pack()
	if err != nil {
		return nil, err
	}
	logger.Info("envelope packed", "bytes", len(out), "object_count", len(records))
	return out, nil
}
