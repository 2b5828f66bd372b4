package world

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/io/digestcodec"
	"voxeledit.ai/internal/sim/world/kernel/model"
)

// stateDigest hashes the voxels, entities and builder state the world loop owns. Entity
// ids are left out because restores mint fresh ones.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte
	digestcodec.WriteU64(h, &tmp, nowTick)

	for _, dh := range w.sortedDimensions() {
		cs := w.dims[dh]
		digestcodec.WriteString(h, &tmp, string(dh))
		for _, k := range cs.LoadedChunkKeys() {
			digestcodec.WriteVec3(h, &tmp, [3]int{k.CX, k.CY, k.CZ})
			d := cs.Chunks[k].Digest()
			h.Write(d[:])
		}
		ents := make([]string, 0, len(cs.Entities))
		for _, e := range cs.Entities {
			ents = append(ents, e.Type+"@"+e.Pos.String()+"#"+e.Name)
		}
		sort.Strings(ents)
		for _, e := range ents {
			digestcodec.WriteString(h, &tmp, e)
		}
	}

	for _, id := range w.sortedSessionIDs() {
		s := w.sessions[id]
		b := s.Builder
		digestcodec.WriteString(h, &tmp, id)
		digestcodec.WriteString(h, &tmp, string(b.Dimension))
		digestcodec.WriteVec3(h, &tmp, b.Pos.ToArray())
		digestcodec.WriteVec3(h, &tmp, b.Selection.Pos1.ToArray())
		digestcodec.WriteVec3(h, &tmp, b.Selection.Pos2.ToArray())
		h.Write([]byte{
			digestcodec.BoolByte(b.Selection.Has1),
			digestcodec.BoolByte(b.Selection.Has2),
			digestcodec.BoolByte(b.History.IsRecording()),
		})
		digestcodec.WriteInt(h, &tmp, b.History.Len())
		digestcodec.WriteInt(h, &tmp, b.History.Cursor())
		digestcodec.WriteSortedNonZeroIntMap(h, &tmp, w.snapshotCounts(b.Owner))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// snapshotCounts counts owner's snapshots by name, with history slots folded together.
func (w *World) snapshotCounts(owner model.Owner) map[string]int {
	out := map[string]int{}
	for _, name := range w.snaps.Names(owner) {
		if strings.HasPrefix(name, regions.ReservedPrefix) {
			out[regions.ReservedPrefix]++
			continue
		}
		out[name]++
	}
	return out
}
