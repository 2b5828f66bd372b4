package model

import "fmt"

// Vec3i is an integer block position or extent.
type Vec3i struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func V(x, y, z int) Vec3i { return Vec3i{X: x, Y: y, Z: z} }

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }
func (v Vec3i) Sub(o Vec3i) Vec3i { return Vec3i{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z} }

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func FromArray(a [3]int) Vec3i { return Vec3i{X: a[0], Y: a[1], Z: a[2]} }

// Volume treats v as an extent.
func (v Vec3i) Volume() int { return v.X * v.Y * v.Z }

func (v Vec3i) String() string { return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z) }

// RegionMin returns the minimum corner of the box spanned by a and b.
func RegionMin(a, b Vec3i) Vec3i {
	return Vec3i{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
}

// RegionMax returns the maximum corner of the box spanned by a and b.
func RegionMax(a, b Vec3i) Vec3i {
	return Vec3i{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
}

// RegionSize returns the inclusive extent of the box spanned by a and b.
func RegionSize(a, b Vec3i) Vec3i {
	return Vec3i{X: absInt(a.X-b.X) + 1, Y: absInt(a.Y-b.Y) + 1, Z: absInt(a.Z-b.Z) + 1}
}

func RegionVolume(a, b Vec3i) int { return RegionSize(a, b).Volume() }

// Contains reports whether p lies in the inclusive box [lo, hi].
func Contains(lo, hi, p Vec3i) bool {
	return p.X >= lo.X && p.X <= hi.X &&
		p.Y >= lo.Y && p.Y <= hi.Y &&
		p.Z >= lo.Z && p.Z <= hi.Z
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
