package editcmd

import (
	"fmt"
	"strings"

	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/terrain/store"
)

func (env *Env) dimension(b *Builder) (*store.ChunkStore, error) {
	dim, ok := env.Dims.Dimension(b.Dimension)
	if !ok {
		return nil, badRequest("unknown dimension %s", b.Dimension)
	}
	return dim, nil
}

// selection returns the builder's selected box after checking it can be edited.
func (env *Env) selection(b *Builder, maxVolume int) (*store.ChunkStore, model.Vec3i, model.Vec3i, error) {
	if !b.Selection.Complete() {
		return nil, model.Vec3i{}, model.Vec3i{}, badRequest("make a selection with pos1 and pos2 first")
	}
	dim, err := env.dimension(b)
	if err != nil {
		return nil, model.Vec3i{}, model.Vec3i{}, err
	}
	lo, hi := b.Selection.Bounds()
	if !dim.BoxInBounds(lo, hi) {
		return nil, model.Vec3i{}, model.Vec3i{}, badRequest("selection %s to %s leaves dimension %s", lo, hi, b.Dimension)
	}
	if maxVolume > 0 {
		if v := model.RegionVolume(lo, hi); v > maxVolume {
			return nil, model.Vec3i{}, model.Vec3i{}, badRequest("selection of %d blocks exceeds the limit of %d", v, maxVolume)
		}
	}
	return dim, lo, hi, nil
}

func cmdPos(which int) handler {
	name := fmt.Sprintf("pos%d", which)
	return func(env *Env, b *Builder, args []string) (Result, error) {
		p := b.Pos
		if len(args) != 0 {
			var ok bool
			if p, ok = parseVec(args, b.Pos); !ok {
				return Result{}, usage(name)
			}
		}
		dim, err := env.dimension(b)
		if err != nil {
			return Result{}, err
		}
		if !dim.InBounds(p.X, p.Y, p.Z) {
			return Result{}, badRequest("position %s is outside dimension %s", p, b.Dimension)
		}
		label := "First"
		if which == 1 {
			b.Selection.Pos1, b.Selection.Has1 = p, true
		} else {
			b.Selection.Pos2, b.Selection.Has2 = p, true
			label = "Second"
		}
		line := fmt.Sprintf("%s position set to %s.", label, p)
		if b.Selection.Complete() {
			lo, hi := b.Selection.Bounds()
			line = fmt.Sprintf("%s position set to %s (%d blocks).", label, p, model.RegionVolume(lo, hi))
		}
		return Result{Lines: []string{line}}, nil
	}
}

func cmdSel(env *Env, b *Builder, args []string) (Result, error) {
	switch {
	case len(args) == 1 && strings.EqualFold(args[0], "clear"):
		b.Selection = Selection{}
		return Result{Lines: []string{"Selection cleared."}}, nil
	case len(args) != 0:
		return Result{}, usage("sel")
	}
	if !b.Selection.Complete() {
		return Result{Lines: []string{"No selection."}}, nil
	}
	lo, hi := b.Selection.Bounds()
	return Result{Lines: []string{
		fmt.Sprintf("Selection %s to %s in %s, size %s, %d blocks.", lo, hi, b.Dimension, model.RegionSize(lo, hi), model.RegionVolume(lo, hi)),
	}}, nil
}

func cmdTeleport(env *Env, b *Builder, args []string) (Result, error) {
	p, ok := parseVec(args, b.Pos)
	if !ok {
		return Result{}, usage("tp")
	}
	dim, err := env.dimension(b)
	if err != nil {
		return Result{}, err
	}
	if !dim.InBounds(p.X, p.Y, p.Z) {
		return Result{}, badRequest("position %s is outside dimension %s", p, b.Dimension)
	}
	b.Pos = p
	return Result{Lines: []string{fmt.Sprintf("Teleported to %s.", p)}}, nil
}

// cmdDimension moves the builder to another dimension. The selection does not carry over.
func cmdDimension(env *Env, b *Builder, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, usage("dim")
	}
	h := model.RegionHandle(strings.ToUpper(args[0]))
	dim, ok := env.Dims.Dimension(h)
	if !ok {
		return Result{}, badRequest("unknown dimension %s", h)
	}
	b.Dimension = h
	b.Selection = Selection{}
	if b.Pos.Y < dim.Gen.MinY {
		b.Pos.Y = dim.Gen.MinY
	}
	if b.Pos.Y > dim.Gen.MaxY {
		b.Pos.Y = dim.Gen.MaxY
	}
	return Result{Lines: []string{fmt.Sprintf("Moved to dimension %s at %s.", h, b.Pos)}}, nil
}
