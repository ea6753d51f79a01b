package feather

import (
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell lists the indices of the bounds overlapping it
type Cell struct {
	indices []int
}

// Pair is a candidate pair of indices, A < B
type Pair struct {
	A, B int
}

// SpatialGrid is a uniform grid hashed into a fixed number of cells
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// ============================================================================
// Construction
// ============================================================================

func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].indices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// ============================================================================
// Queries
// ============================================================================

// Insert registers index in every cell overlapped by aabb
func (sg *SpatialGrid) Insert(index int, aabb actor.AABB) {
	sg.forEachCell(aabb, func(cellIdx int) {
		sg.cells[cellIdx].indices = append(sg.cells[cellIdx].indices, index)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].indices = sg.cells[i].indices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].indices) > 1 {
			sort.Ints(sg.cells[i].indices)
		}
	}
}

// FindPairs returns each overlapping pair once, in index order
func (sg *SpatialGrid) FindPairs(aabbs []actor.AABB) []Pair {
	pairs := make([]Pair, 0, len(aabbs)/2)
	seen := make([]bool, len(aabbs))

	for index := range aabbs {
		pairs = sg.appendPairs(pairs, aabbs, index, seen)
	}

	return pairs
}

// FindPairsParallel splits the scan over workers; the pairs come back in no
// particular order
func (sg *SpatialGrid) FindPairsParallel(aabbs []actor.AABB, numWorkers int) <-chan Pair {
	var wg sync.WaitGroup
	pairsChan := make(chan Pair, numWorkers*10)

	perWorker := max(1, len(aabbs)/numWorkers)
	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		end := start + perWorker
		if w == numWorkers-1 {
			end = len(aabbs)
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			seen := make([]bool, len(aabbs))
			var local []Pair
			for index := start; index < end; index++ {
				local = sg.appendPairs(local[:0], aabbs, index, seen)
				for _, p := range local {
					pairsChan <- p
				}
			}
		}(start, end)
	}

	go func() {
		wg.Wait()
		close(pairsChan)
	}()

	return pairsChan
}

// appendPairs adds the pairs (index, other) with other > index
func (sg *SpatialGrid) appendPairs(pairs []Pair, aabbs []actor.AABB, index int, seen []bool) []Pair {
	clear(seen)
	aabb := aabbs[index]

	sg.forEachCell(aabb, func(cellIdx int) {
		for _, other := range sg.cells[cellIdx].indices {
			if other <= index || seen[other] {
				continue
			}
			seen[other] = true

			if aabb.Overlaps(aabbs[other]) {
				pairs = append(pairs, Pair{A: index, B: other})
			}
		}
	})

	return pairs
}

func (sg *SpatialGrid) forEachCell(aabb actor.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
