package pathfinding

import (
	"container/heap"
	"strings"

	"github.com/milk9111/gridwalk/grid"
	"github.com/zyedidia/generic/mapset"
)

// Path is an ordered list of cells from (excluding) the start to (including)
// the goal. An empty path means there is nothing to walk.
type Path []grid.Cell

func (p Path) Empty() bool {
	return len(p) == 0
}

// Last returns the goal cell of a non-empty path.
func (p Path) Last() (grid.Cell, bool) {
	if len(p) == 0 {
		return grid.Cell{}, false
	}
	return p[len(p)-1], true
}

func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.String())
	}
	b.WriteByte(']')
	return b.String()
}

type Option func(*Pathfinder)

// WithPathCache remembers results per start/goal pair until the grid changes.
// Queries with busy cells always bypass the cache.
func WithPathCache() Option {
	return func(pf *Pathfinder) {
		pf.caching = true
	}
}

type cacheKey struct {
	sx, sy, gx, gy int
}

// Pathfinder runs A* over a grid with 4-directional moves and unit cost.
type Pathfinder struct {
	grid *grid.Grid

	caching      bool
	cache        map[cacheKey]Path
	cacheVersion uint64
}

func New(g *grid.Grid, opts ...Option) *Pathfinder {
	pf := &Pathfinder{grid: g}
	for _, opt := range opts {
		if opt != nil {
			opt(pf)
		}
	}
	if pf.caching {
		pf.cache = make(map[cacheKey]Path)
		pf.cacheVersion = g.Version()
	}
	return pf
}

func (pf *Pathfinder) Grid() *grid.Grid {
	return pf.grid
}

// FindPath returns the shortest path from start to goal. Busy cells are
// treated as blocked for this call only. Start or goal outside the grid is
// the only error; unreachable goals yield an empty path.
func (pf *Pathfinder) FindPath(startX, startY, goalX, goalY int, busy ...grid.Cell) (Path, error) {
	start, err := pf.grid.Get(startX, startY)
	if err != nil {
		return nil, err
	}
	goal, err := pf.grid.Get(goalX, goalY)
	if err != nil {
		return nil, err
	}

	if start.X == goal.X && start.Y == goal.Y {
		return nil, nil
	}

	var busySet mapset.Set[gridPos]
	if len(busy) > 0 {
		busySet = mapset.New[gridPos]()
		for _, c := range busy {
			busySet.Put(gridPos{x: c.X, y: c.Y})
		}
	}

	isBlocked := func(c grid.Cell) bool {
		if !c.Walkable() {
			return true
		}
		return len(busy) > 0 && busySet.Has(gridPos{x: c.X, y: c.Y})
	}

	if isBlocked(goal) {
		return nil, nil
	}

	useCache := pf.caching && len(busy) == 0
	key := cacheKey{sx: startX, sy: startY, gx: goalX, gy: goalY}
	if useCache {
		if v := pf.grid.Version(); v != pf.cacheVersion {
			clear(pf.cache)
			pf.cacheVersion = v
		}
		if path, ok := pf.cache[key]; ok {
			return path.Clone(), nil
		}
	}

	path := pf.astar(gridPos{x: startX, y: startY}, gridPos{x: goalX, y: goalY}, isBlocked)

	if useCache {
		pf.cache[key] = path.Clone()
	}
	return path, nil
}

type gridPos struct {
	x int
	y int
}

func (pf *Pathfinder) astar(start, goal gridPos, isBlocked func(grid.Cell) bool) Path {
	gridW := pf.grid.Width()
	size := gridW * pf.grid.Height()

	cameFrom := make([]int, size)
	gScore := make([]int, size)
	closed := make([]bool, size)
	for i := range cameFrom {
		cameFrom[i] = -1
		gScore[i] = -1
	}

	startIdx := start.y*gridW + start.x
	goalIdx := goal.y*gridW + goal.x
	gScore[startIdx] = 0

	open := &openSet{}
	heap.Init(open)
	var seq uint64
	heap.Push(open, &openItem{pos: start, f: heuristic(start, goal), g: 0, seq: seq})

	neighbors := make([]grid.Cell, 0, 4)

	for open.Len() > 0 {
		current := heap.Pop(open).(*openItem)
		cur := current.pos
		curIdx := cur.y*gridW + cur.x

		if closed[curIdx] || current.g != gScore[curIdx] {
			continue
		}
		closed[curIdx] = true

		if curIdx == goalIdx {
			return pf.reconstructPath(cameFrom, startIdx, goalIdx)
		}

		neighbors = pf.grid.AppendNeighbors(neighbors[:0], cur.x, cur.y)
		for _, n := range neighbors {
			idx := n.Y*gridW + n.X
			if closed[idx] || isBlocked(n) {
				continue
			}
			tentativeG := current.g + 1
			if gScore[idx] == -1 || tentativeG < gScore[idx] {
				cameFrom[idx] = curIdx
				gScore[idx] = tentativeG
				np := gridPos{x: n.X, y: n.Y}
				seq++
				heap.Push(open, &openItem{pos: np, f: tentativeG + heuristic(np, goal), g: tentativeG, seq: seq})
			}
		}
	}

	return nil
}

func (pf *Pathfinder) reconstructPath(cameFrom []int, startIdx, goalIdx int) Path {
	gridW := pf.grid.Width()

	path := make(Path, 0, 32)
	for cur := goalIdx; cur != startIdx && cur != -1; cur = cameFrom[cur] {
		c, _ := pf.grid.Lookup(cur%gridW, cur/gridW)
		path = append(path, c)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func heuristic(a, b gridPos) int {
	return absInt(a.x-b.x) + absInt(a.y-b.y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
