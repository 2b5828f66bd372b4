// Package regions keeps named, owner-scoped snapshots of cuboid regions. Regions larger
// than the primitive's capture limit are stored as several aligned sub-chunks; callers
// never see the chunk boundaries.
package regions

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/logic/ids"
)

type Options struct {
	Limit  model.Vec3i
	Policy LoadPolicy
	Logger *log.Logger
}

// Store is not safe for concurrent use; the world loop owns it.
type Store struct {
	prim     Primitive
	tokens   Tokens
	resolver Resolver
	limit    model.Vec3i
	policy   LoadPolicy
	log      *log.Logger

	snaps map[string]*Snapshot // qualified id -> meta
}

func NewStore(prim Primitive, tokens Tokens, resolver Resolver, opts Options) *Store {
	limit := opts.Limit
	if limit.X <= 0 || limit.Y <= 0 || limit.Z <= 0 {
		limit = DefaultLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{
		prim:     prim,
		tokens:   tokens,
		resolver: resolver,
		limit:    limit,
		policy:   opts.Policy,
		log:      logger,
		snaps:    map[string]*Snapshot{},
	}
}

func (s *Store) Limit() model.Vec3i { return s.limit }
func (s *Store) Policy() LoadPolicy { return s.policy }

// Save captures the box spanned by start and end as owner's snapshot name. A snapshot
// already stored under name is invalidated first. On failure nothing of this call
// remains in the primitive and Has reports false.
func (s *Store) Save(name string, start, end model.Vec3i, owner model.Owner, includeEntities bool) error {
	qid, err := s.allocate(name, owner)
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	if prev, ok := s.snaps[qid]; ok {
		if fails := s.removeChunks(prev); len(fails) > 0 {
			s.log.Printf("regions: overwrite %s: %s", qid, joinFailures(fails))
		}
		delete(s.snaps, qid)
	}

	lo, hi := model.RegionMin(start, end), model.RegionMax(start, end)
	size := model.RegionSize(lo, hi)
	dim := s.resolver.CurrentRegion(owner)
	snap := &Snapshot{
		Name:        name,
		Owner:       owner,
		QualifiedID: qid,
		Dimension:   dim,
		Position:    lo,
		Size:        size,
		Origin:      s.resolver.BlockPosition(owner).Sub(lo),
		BlockCount:  size.Volume(),
	}

	if !ExceedsLimit(size, s.limit) {
		if err := s.prim.Capture(dim, qid, lo, hi, includeEntities); err != nil {
			return &CaptureError{Name: name, Failure: ChunkFailure{ID: qid, Err: err}}
		}
		s.snaps[qid] = snap
		return nil
	}

	offsets := Partition(size, s.limit)
	captured := make([]model.Vec3i, 0, len(offsets))
	for _, off := range offsets {
		subLo := lo.Add(off)
		subHi := subLo.Add(ChunkExtent(size, s.limit, off)).Sub(model.V(1, 1, 1))
		id := ids.ChunkID(qid, off)
		if err := s.prim.Capture(dim, id, subLo, subHi, includeEntities); err != nil {
			cerr := &CaptureError{
				Name:     name,
				Failure:  ChunkFailure{ID: id, Offset: off, Err: err},
				Captured: len(captured),
			}
			for _, done := range captured {
				doneID := ids.ChunkID(qid, done)
				if rerr := s.prim.Remove(doneID); rerr != nil {
					cerr.RollbackFailures = append(cerr.RollbackFailures, ChunkFailure{ID: doneID, Offset: done, Err: rerr})
				}
			}
			return cerr
		}
		captured = append(captured, off)
	}
	snap.ChunkOffsets = captured
	s.snaps[qid] = snap
	return nil
}

// Load restores owner's snapshot name into the owner's current dimension.
func (s *Store) Load(name string, anchor model.Vec3i, owner model.Owner, mode LoadMode) error {
	return s.LoadInto(name, s.resolver.CurrentRegion(owner), anchor, owner, mode)
}

// LoadInto is Load with an explicit target dimension. History restores use it to put a
// box back where it was captured.
func (s *Store) LoadInto(name string, dim model.RegionHandle, anchor model.Vec3i, owner model.Owner, mode LoadMode) error {
	snap, ok := s.lookup(name, owner)
	if !ok {
		return &RestoreError{Name: name, NotFound: true}
	}
	at := anchor
	if mode == Relative {
		at = anchor.Sub(snap.Origin)
	}

	if !snap.Chunked() {
		if err := s.prim.Restore(dim, snap.QualifiedID, at); err != nil {
			return &RestoreError{Name: name, Failures: []ChunkFailure{{ID: snap.QualifiedID, Err: err}}}
		}
		return nil
	}

	rerr := &RestoreError{Name: name}
	for _, off := range snap.ChunkOffsets {
		id := ids.ChunkID(snap.QualifiedID, off)
		if err := s.prim.Restore(dim, id, at.Add(off)); err != nil {
			rerr.Failures = append(rerr.Failures, ChunkFailure{ID: id, Offset: off, Err: err})
			continue
		}
		rerr.Restored++
	}
	if rerr.Restored == 0 || (s.policy == AllChunks && len(rerr.Failures) > 0) {
		return rerr
	}
	if len(rerr.Failures) > 0 {
		s.log.Printf("regions: partial load of %s: %s", snap.QualifiedID, joinFailures(rerr.Failures))
	}
	return nil
}

func (s *Store) Has(name string, owner model.Owner) bool {
	_, ok := s.lookup(name, owner)
	return ok
}

// Delete removes every stored chunk of the snapshot and drops its metadata. Removal
// continues past failing chunks.
func (s *Store) Delete(name string, owner model.Owner) error {
	snap, ok := s.lookup(name, owner)
	if !ok {
		return fmt.Errorf("delete %q: %w", name, ErrNotFound)
	}
	fails := s.removeChunks(snap)
	delete(s.snaps, snap.QualifiedID)
	if len(fails) > 0 {
		return &DeleteError{Name: name, Failures: fails}
	}
	return nil
}

// DeleteAll sweeps every snapshot carrying owner's token and then releases the token.
func (s *Store) DeleteAll(owner model.Owner) error {
	tok, ok := s.tokens.Lookup(owner)
	if !ok {
		return nil
	}
	var errs []error
	for _, qid := range s.sortedIDs() {
		if !ids.HasToken(qid, tok) {
			continue
		}
		snap := s.snaps[qid]
		if fails := s.removeChunks(snap); len(fails) > 0 {
			errs = append(errs, &DeleteError{Name: snap.Name, Failures: fails})
		}
		delete(s.snaps, qid)
	}
	s.tokens.Release(owner)
	return errors.Join(errs...)
}

func (s *Store) Origin(name string, owner model.Owner) (model.Vec3i, error) {
	snap, err := s.mustLookup(name, owner)
	if err != nil {
		return model.Vec3i{}, err
	}
	return snap.Origin, nil
}

func (s *Store) Position(name string, owner model.Owner) (model.Vec3i, error) {
	snap, err := s.mustLookup(name, owner)
	if err != nil {
		return model.Vec3i{}, err
	}
	return snap.Position, nil
}

func (s *Store) Size(name string, owner model.Owner) (model.Vec3i, error) {
	snap, err := s.mustLookup(name, owner)
	if err != nil {
		return model.Vec3i{}, err
	}
	return snap.Size, nil
}

func (s *Store) BlockCount(name string, owner model.Owner) (int, error) {
	snap, err := s.mustLookup(name, owner)
	if err != nil {
		return 0, err
	}
	return snap.BlockCount, nil
}

// Get returns a copy of the snapshot metadata.
func (s *Store) Get(name string, owner model.Owner) (Snapshot, bool) {
	snap, ok := s.lookup(name, owner)
	if !ok {
		return Snapshot{}, false
	}
	return snap.clone(), true
}

// Names lists owner's snapshot names, reserved ones included, in lexical order.
func (s *Store) Names(owner model.Owner) []string {
	var out []string
	for _, snap := range s.snaps {
		if snap.Owner == owner {
			out = append(out, snap.Name)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) Stats() Stats {
	st := Stats{Snapshots: len(s.snaps)}
	for _, snap := range s.snaps {
		st.Chunks += len(snap.StoredIDs())
	}
	return st
}

// Backs reports whether primitive id is one of the stored ids of a snapshot in the store.
func (s *Store) Backs(id string) bool {
	if snap, ok := s.snaps[id]; ok && !snap.Chunked() {
		return true
	}
	qid, off, ok := ids.ParseChunkID(id)
	if !ok {
		return false
	}
	snap, ok := s.snaps[qid]
	if !ok {
		return false
	}
	for _, o := range snap.ChunkOffsets {
		if o == off {
			return true
		}
	}
	return false
}

func (s *Store) allocate(name string, owner model.Owner) (string, error) {
	_, had := s.tokens.Lookup(owner)
	tok, err := s.tokens.TokenFor(owner)
	if err != nil {
		return "", err
	}
	if !had {
		s.log.Printf("regions: given %q a region id of %s", owner, tok)
	}
	return ids.QualifiedID(name, tok), nil
}

// lookup never allocates: an owner without a token has no snapshots.
func (s *Store) lookup(name string, owner model.Owner) (*Snapshot, bool) {
	tok, ok := s.tokens.Lookup(owner)
	if !ok {
		return nil, false
	}
	snap, ok := s.snaps[ids.QualifiedID(name, tok)]
	return snap, ok
}

func (s *Store) mustLookup(name string, owner model.Owner) (*Snapshot, error) {
	snap, ok := s.lookup(name, owner)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return snap, nil
}

func (s *Store) removeChunks(snap *Snapshot) []ChunkFailure {
	var fails []ChunkFailure
	if !snap.Chunked() {
		if err := s.prim.Remove(snap.QualifiedID); err != nil {
			fails = append(fails, ChunkFailure{ID: snap.QualifiedID, Err: err})
		}
		return fails
	}
	for _, off := range snap.ChunkOffsets {
		id := ids.ChunkID(snap.QualifiedID, off)
		if err := s.prim.Remove(id); err != nil {
			fails = append(fails, ChunkFailure{ID: id, Offset: off, Err: err})
		}
	}
	return fails
}

func (s *Store) sortedIDs() []string {
	out := make([]string, 0, len(s.snaps))
	for qid := range s.snaps {
		out = append(out, qid)
	}
	sort.Strings(out)
	return out
}

// ValidateName rejects names builders may not use.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty snapshot name")
	}
	if strings.HasPrefix(name, ReservedPrefix) {
		return fmt.Errorf("%q: %w", name, ErrReservedName)
	}
	return nil
}
