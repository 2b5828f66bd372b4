package gen

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func Mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func Hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func ClampPermille(v int) int {
	if v < 0 {
		return 0
	}
	if v > 1000 {
		return 1000
	}
	return v
}

// SurfaceHeight returns the grass layer y for column (x, z): base plus a gentle 0..amp step
// that changes every cell blocks.
func SurfaceHeight(seed int64, x, z, base, amp, cell int) int {
	if amp <= 0 {
		return base
	}
	if cell <= 0 {
		cell = 1
	}
	h := Hash2(seed, FloorDiv(x, cell), FloorDiv(z, cell))
	return base + int(h%uint64(amp+1))
}

// OreAt rolls a per-voxel ore placement with the given permille probability.
func OreAt(seed int64, x, y, z, permille int) bool {
	p := ClampPermille(permille)
	if p == 0 {
		return false
	}
	return Hash3(seed, x, y, z)%1000 < uint64(p)
}
