package field

// ChunkWidth is the number of bits per multiplication-table chunk.
const ChunkWidth = 8

// ChunkPlan describes how an element is split into 8-bit chunks for the
// multiplication table.
type ChunkPlan struct {
	Width int `json:"width"`
	Parts int `json:"parts"`
}

// PlanChunks returns the chunk plan for a field of the given size.
func PlanChunks(size uint64) ChunkPlan {
	return ChunkPlan{
		Width: ChunkWidth,
		Parts: CeilLog256(size),
	}
}

// CeilLog256 returns the number of bytes needed to represent every value
// in [0, n), i.e. log base 256 of n rounded up.
func CeilLog256(n uint64) int {
	if n == 0 {
		return 0
	}

	c := 1
	for n > 256 {
		c++
		// Adding 255 rounds the division up without pushing an exact power
		// of 256 over to the next chunk.
		n = (n + 255) >> 8
	}
	return c
}
