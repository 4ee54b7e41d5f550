package board

// Offset is a step vector on the grid.
type Offset struct {
	DX int
	DY int
}

func (o Offset) Scale(n int) Offset { return Offset{DX: o.DX * n, DY: o.DY * n} }

func (o Offset) Neg() Offset { return Offset{DX: -o.DX, DY: -o.DY} }

var (
	North = Offset{DX: 0, DY: 1}
	South = Offset{DX: 0, DY: -1}
	East  = Offset{DX: 1, DY: 0}
	West  = Offset{DX: -1, DY: 0}

	NorthEast = Offset{DX: 1, DY: 1}
	SouthEast = Offset{DX: 1, DY: -1}
	NorthWest = Offset{DX: -1, DY: 1}
	SouthWest = Offset{DX: -1, DY: -1}
)

var (
	Orthogonal = []Offset{North, South, East, West}
	Diagonal   = []Offset{NorthEast, SouthEast, NorthWest, SouthWest}
	AllEight   = []Offset{East, West, North, South, NorthEast, SouthEast, NorthWest, SouthWest}
)

var KnightJumps = []Offset{
	{DX: 2, DY: 1}, {DX: 2, DY: -1},
	{DX: -2, DY: 1}, {DX: -2, DY: -1},
	{DX: 1, DY: 2}, {DX: 1, DY: -2},
	{DX: -1, DY: 2}, {DX: -1, DY: -2},
}

// NeighborAlong offsets c by dir*steps. The result may be off the grid; callers check IsActive.
func NeighborAlong(c Coord, dir Offset, steps int) Coord {
	return Coord{X: c.X + dir.DX*steps, Y: c.Y + dir.DY*steps}
}

// Add applies a single offset.
func (c Coord) Add(o Offset) Coord { return NeighborAlong(c, o, 1) }

// Delta returns to-from as an offset.
func Delta(from, to Coord) Offset {
	return Offset{DX: to.X - from.X, DY: to.Y - from.Y}
}
