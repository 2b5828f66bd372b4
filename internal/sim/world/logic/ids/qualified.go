package ids

import (
	"fmt"
	"strconv"
	"strings"

	"voxeledit.ai/internal/sim/world/kernel/model"
)

// StructurePrefix namespaces every structure id this server hands to the capture primitive.
const StructurePrefix = "wedit:"

// QualifiedID derives the primitive-level id of an owner-scoped snapshot name.
func QualifiedID(name, token string) string {
	return StructurePrefix + name + "_" + token
}

// HasToken reports whether qualifiedID was derived with token.
func HasToken(qualifiedID, token string) bool {
	if token == "" {
		return false
	}
	return strings.HasPrefix(qualifiedID, StructurePrefix) && strings.HasSuffix(qualifiedID, "_"+token)
}

// ChunkID names one sub-chunk of a chunked snapshot; off is relative to the snapshot's min corner.
func ChunkID(qualifiedID string, off model.Vec3i) string {
	return fmt.Sprintf("%s_%d_%d_%d", qualifiedID, off.X, off.Y, off.Z)
}

// ParseChunkID splits a chunk id back into its qualified id and offset.
func ParseChunkID(id string) (qualifiedID string, off model.Vec3i, ok bool) {
	parts := strings.Split(id, "_")
	if len(parts) < 5 {
		return "", model.Vec3i{}, false
	}
	n := len(parts)
	x, err1 := strconv.Atoi(parts[n-3])
	y, err2 := strconv.Atoi(parts[n-2])
	z, err3 := strconv.Atoi(parts[n-1])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", model.Vec3i{}, false
	}
	qualifiedID = strings.Join(parts[:n-3], "_")
	if !strings.HasPrefix(qualifiedID, StructurePrefix) {
		return "", model.Vec3i{}, false
	}
	return qualifiedID, model.V(x, y, z), true
}
