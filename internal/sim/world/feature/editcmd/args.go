package editcmd

import (
	"strconv"
	"strings"

	"voxeledit.ai/internal/sim/world/kernel/model"
)

// parseCoord reads an absolute coordinate or a "~"/"~N" offset from base.
func parseCoord(s string, base int) (int, bool) {
	if rest, ok := strings.CutPrefix(s, "~"); ok {
		if rest == "" {
			return base, true
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, false
		}
		return base + n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseVec(args []string, base model.Vec3i) (model.Vec3i, bool) {
	if len(args) != 3 {
		return model.Vec3i{}, false
	}
	x, okx := parseCoord(args[0], base.X)
	y, oky := parseCoord(args[1], base.Y)
	z, okz := parseCoord(args[2], base.Z)
	if !okx || !oky || !okz {
		return model.Vec3i{}, false
	}
	return model.V(x, y, z), true
}

// parseTimes reads the optional repeat count of undo/redo.
func parseTimes(args []string) (int, bool) {
	switch len(args) {
	case 0:
		return 1, true
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
