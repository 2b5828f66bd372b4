package model

// Owner identifies a builder. Snapshots, tokens and history are scoped by it.
type Owner string

// RegionHandle names the world partition (dimension) a capture or restore targets.
type RegionHandle string

// Entity is a non-block object placed in a dimension (armor stands, item frames, dropped items).
// Structures captured with entities carry copies positioned relative to the capture corner.
type Entity struct {
	EntityID string `json:"entity_id"`
	Type     string `json:"type"`
	Pos      Vec3i  `json:"pos"`
	Name     string `json:"name,omitempty"`
}

func (e *Entity) ID() string { return e.EntityID }
