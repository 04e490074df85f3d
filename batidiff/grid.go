package batidiff

import (
	"github.com/paulmach/orb"
)

// HardZoneLimit caps the grid side, whatever the configuration says.
const HardZoneLimit = 500

type Cell struct {
	Row int
	Col int
}

// Grid buckets outer buildings by centroid over a zones x zones partition of
// an extent. Rows follow latitude, columns longitude.
type Grid struct {
	bound orb.Bound
	zones int

	deltaLat float64
	deltaLon float64

	cells map[Cell][]*Building
	count int
}

// ZoneCount picks the grid side so that a cell is at least twice the
// maximum match distance, capped by HardZoneLimit and maxZones.
func ZoneCount(bound orb.Bound, maxDistance float64, maxZones int) int {
	if maxDistance <= 0 {
		return 1
	}

	latZones := int(DegreesToMeters(bound.Top()-bound.Bottom())/(2*maxDistance)) - 1
	lonZones := int(DegreesToMeters(bound.Right()-bound.Left())/(2*maxDistance)) - 1

	zones := min(latZones, lonZones, HardZoneLimit)
	if maxZones > 0 {
		zones = min(zones, maxZones)
	}
	if zones < 1 {
		zones = 1
	}
	return zones
}

func NewGrid(bound orb.Bound, zones int) *Grid {
	if zones < 1 {
		zones = 1
	}
	return &Grid{
		bound:    bound,
		zones:    zones,
		deltaLat: (bound.Top() - bound.Bottom()) / float64(zones),
		deltaLon: (bound.Right() - bound.Left()) / float64(zones),
		cells:    make(map[Cell][]*Building),
	}
}

func (g *Grid) Zones() int {
	return g.zones
}

func (g *Grid) Bound() orb.Bound {
	return g.bound
}

// Len is the number of indexed buildings.
func (g *Grid) Len() int {
	return g.count
}

func bin(v, origin, delta float64, zones int) int {
	if delta <= 0 {
		return 0
	}
	f := (v - origin) / delta
	if f >= float64(zones) {
		return zones - 1
	}
	if !(f > 0) {
		return 0
	}
	i := int(f)
	if i > zones-1 {
		i = zones - 1
	}
	return i
}

// CellOf bins a point, clamping anything outside the extent to the border.
func (g *Grid) CellOf(p Point) Cell {
	return Cell{
		Row: bin(p.Lat, g.bound.Bottom(), g.deltaLat, g.zones),
		Col: bin(p.Lon, g.bound.Left(), g.deltaLon, g.zones),
	}
}

// Insert indexes an outer building by its centroid. Inner rings are not
// indexed, they follow their outer ring.
func (g *Grid) Insert(b *Building) (Cell, bool) {
	if !b.IsOuter() {
		return Cell{}, false
	}

	c := g.CellOf(b.Centroid)
	g.cells[c] = append(g.cells[c], b)
	g.count++
	return c, true
}

func (g *Grid) Cell(c Cell) []*Building {
	return g.cells[c]
}

// Cells returns the non-empty cells in row-major order.
func (g *Grid) Cells() []Cell {
	result := make([]Cell, 0, len(g.cells))
	for row := 0; row < g.zones; row++ {
		for col := 0; col < g.zones; col++ {
			c := Cell{Row: row, Col: col}
			if len(g.cells[c]) > 0 {
				result = append(result, c)
			}
		}
	}
	return result
}

// Rows returns the non-empty cells grouped by row.
func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.zones)
	for _, c := range g.Cells() {
		rows[c.Row] = append(rows[c.Row], c)
	}
	return rows
}

// EachNeighbor calls fn for every building in the 3x3 block of cells
// centered on c, clamped to the grid. Order is row-major, then insertion.
func (g *Grid) EachNeighbor(c Cell, fn func(b *Building)) {
	rowMin := max(c.Row-1, 0)
	rowMax := min(c.Row+1, g.zones-1)
	colMin := max(c.Col-1, 0)
	colMax := min(c.Col+1, g.zones-1)

	for row := rowMin; row <= rowMax; row++ {
		for col := colMin; col <= colMax; col++ {
			for _, b := range g.cells[Cell{Row: row, Col: col}] {
				fn(b)
			}
		}
	}
}

// Density is the number of buildings per cell, indexed [row][col].
func (g *Grid) Density() [][]int {
	d := make([][]int, g.zones)
	for row := range d {
		d[row] = make([]int, g.zones)
	}
	for c, buildings := range g.cells {
		d[c.Row][c.Col] = len(buildings)
	}
	return d
}
