package regions

import (
	"errors"
	"sort"
	"strings"

	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/logic/ids"
)

var errInjected = errors.New("injected primitive failure")

type captureCall struct {
	dim      model.RegionHandle
	id       string
	min, max model.Vec3i
	entities bool
}

type restoreCall struct {
	dim model.RegionHandle
	id  string
	at  model.Vec3i
}

// fakePrimitive records calls and keeps the set of stored ids.
type fakePrimitive struct {
	stored   map[string]model.Vec3i // id -> captured min corner
	captures []captureCall
	restores []restoreCall
	removes  []string

	failCaptureAt int // 1-based capture call number that fails, 0 = never
	failRestore   map[string]bool
	failRemove    map[string]bool
}

func newFakePrimitive() *fakePrimitive {
	return &fakePrimitive{
		stored:      map[string]model.Vec3i{},
		failRestore: map[string]bool{},
		failRemove:  map[string]bool{},
	}
}

func (f *fakePrimitive) Capture(dim model.RegionHandle, id string, lo, hi model.Vec3i, includeEntities bool) error {
	f.captures = append(f.captures, captureCall{dim: dim, id: id, min: lo, max: hi, entities: includeEntities})
	if f.failCaptureAt > 0 && len(f.captures) == f.failCaptureAt {
		return errInjected
	}
	f.stored[id] = lo
	return nil
}

func (f *fakePrimitive) Restore(dim model.RegionHandle, id string, at model.Vec3i) error {
	f.restores = append(f.restores, restoreCall{dim: dim, id: id, at: at})
	if f.failRestore[id] {
		return errInjected
	}
	if _, ok := f.stored[id]; !ok {
		return errors.New("not stored: " + id)
	}
	return nil
}

func (f *fakePrimitive) Remove(id string) error {
	f.removes = append(f.removes, id)
	if f.failRemove[id] {
		return errInjected
	}
	if _, ok := f.stored[id]; !ok {
		return errors.New("not stored: " + id)
	}
	delete(f.stored, id)
	return nil
}

func (f *fakePrimitive) storedWithPrefix(prefix string) []string {
	var out []string
	for id := range f.stored {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

type fakeResolver struct {
	dim model.RegionHandle
	pos map[model.Owner]model.Vec3i
}

func (r *fakeResolver) CurrentRegion(model.Owner) model.RegionHandle { return r.dim }
func (r *fakeResolver) BlockPosition(o model.Owner) model.Vec3i      { return r.pos[o] }

type fixture struct {
	prim   *fakePrimitive
	res    *fakeResolver
	tokens *ids.Allocator
	store  *Store
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		prim:   newFakePrimitive(),
		res:    &fakeResolver{dim: "overworld", pos: map[model.Owner]model.Vec3i{}},
		tokens: ids.NewAllocator(),
	}
	f.store = NewStore(f.prim, f.tokens, f.res, opts)
	return f
}
