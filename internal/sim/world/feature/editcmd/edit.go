package editcmd

import (
	"fmt"

	"voxeledit.ai/internal/sim/encoding"
	"voxeledit.ai/internal/sim/world/feature/history"
	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/kernel/model"
)

func cmdSet(env *Env, b *Builder, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, usage("set")
	}
	blk, ok := env.Palette.BlockID(args[0])
	if !ok {
		return Result{}, badRequest("unknown block %q", args[0])
	}
	dim, lo, hi, err := env.selection(b, env.Limits.MaxVolume)
	if err != nil {
		return Result{}, err
	}
	name := env.Palette.BlockName(blk)

	h := b.History
	if err := h.RecordLabeled("set " + name); err != nil {
		return Result{}, err
	}
	if err := h.AddUndoStructure(lo, hi, history.FullCuboid); err != nil {
		return Result{}, err
	}
	changed := dim.Fill(lo, hi, blk)
	if err := h.AddRedoStructure(lo, hi, history.FullCuboid); err != nil {
		return Result{}, err
	}
	if err := h.Commit(); err != nil {
		return Result{}, err
	}
	return Result{
		Lines: []string{fmt.Sprintf("Operation completed (%d blocks changed).", changed)},
		Op:    &Op{Action: "SET", Dimension: b.Dimension, Min: lo, Max: hi, Block: name, Changed: changed},
	}, nil
}

func cmdCopy(env *Env, b *Builder, args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, usage("copy")
	}
	_, lo, hi, err := env.selection(b, env.Limits.MaxVolume)
	if err != nil {
		return Result{}, err
	}
	if err := env.Snapshots.Save(ClipboardName, lo, hi, b.Owner, env.Limits.IncludeEntities); err != nil {
		return Result{}, err
	}
	return Result{Lines: []string{fmt.Sprintf("%d blocks copied.", model.RegionVolume(lo, hi))}}, nil
}

func cmdCut(env *Env, b *Builder, args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, usage("cut")
	}
	dim, lo, hi, err := env.selection(b, env.Limits.MaxVolume)
	if err != nil {
		return Result{}, err
	}

	h := b.History
	if err := h.RecordLabeled("cut"); err != nil {
		return Result{}, err
	}
	if err := h.AddUndoStructure(lo, hi, history.FullCuboid); err != nil {
		return Result{}, err
	}
	if err := env.Snapshots.Save(ClipboardName, lo, hi, b.Owner, env.Limits.IncludeEntities); err != nil {
		return Result{}, err
	}
	changed := dim.Fill(lo, hi, dim.Gen.Air)
	if err := h.AddRedoStructure(lo, hi, history.FullCuboid); err != nil {
		return Result{}, err
	}
	if err := h.Commit(); err != nil {
		return Result{}, err
	}
	return Result{
		Lines: []string{fmt.Sprintf("%d blocks cut.", model.RegionVolume(lo, hi))},
		Op:    &Op{Action: "CUT", Dimension: b.Dimension, Min: lo, Max: hi, Block: env.Palette.BlockName(dim.Gen.Air), Changed: changed},
	}, nil
}

// cmdPaste places the clipboard so the position it was copied from lands on the builder.
func cmdPaste(env *Env, b *Builder, args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, usage("paste")
	}
	if !env.Snapshots.Has(ClipboardName, b.Owner) {
		return Result{}, fmt.Errorf("clipboard is empty: %w", regions.ErrNotFound)
	}
	origin, err := env.Snapshots.Origin(ClipboardName, b.Owner)
	if err != nil {
		return Result{}, err
	}
	size, err := env.Snapshots.Size(ClipboardName, b.Owner)
	if err != nil {
		return Result{}, err
	}
	dim, err := env.dimension(b)
	if err != nil {
		return Result{}, err
	}
	lo := b.Pos.Sub(origin)
	hi := lo.Add(size).Sub(model.V(1, 1, 1))
	if !dim.BoxInBounds(lo, hi) {
		return Result{}, badRequest("paste at %s to %s leaves dimension %s", lo, hi, b.Dimension)
	}

	h := b.History
	if err := h.RecordLabeled("paste"); err != nil {
		return Result{}, err
	}
	if err := h.AddUndoStructure(lo, hi, history.FullCuboid); err != nil {
		return Result{}, err
	}
	if err := env.Snapshots.Load(ClipboardName, b.Pos, b.Owner, regions.Relative); err != nil {
		return Result{}, err
	}
	if err := h.AddRedoStructure(lo, hi, history.FullCuboid); err != nil {
		return Result{}, err
	}
	if err := h.Commit(); err != nil {
		return Result{}, err
	}
	return Result{
		Lines: []string{fmt.Sprintf("Pasted %d blocks at %s.", size.Volume(), lo)},
		Op:    &Op{Action: "PASTE", Dimension: b.Dimension, Min: lo, Max: hi, Changed: size.Volume()},
	}, nil
}

// cmdDump returns the selection's voxels run-length encoded.
func cmdDump(env *Env, b *Builder, args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, usage("dump")
	}
	dim, lo, hi, err := env.selection(b, env.Limits.DumpMaxVolume)
	if err != nil {
		return Result{}, err
	}
	size := model.RegionSize(lo, hi)
	data, err := encoding.EncodeVoxels(size, dim.ReadRegion(lo, size))
	if err != nil {
		return Result{}, err
	}
	return Result{Lines: []string{
		fmt.Sprintf("Dump of %s size %s.", lo, size),
		data,
	}}, nil
}
