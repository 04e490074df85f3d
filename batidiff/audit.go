package batidiff

import (
	"fmt"
)

// Balance holds the counts of one grid cell. Before and Deleted come from the
// old grid, After, New and Modified from the new one.
type Balance struct {
	Cell      Cell
	Before    int
	After     int
	New       int
	Deleted   int
	Modified  int
	Corrected bool
}

// Balanced reports whether after = before + new - deleted.
func (b Balance) Balanced() bool {
	return b.After == b.Before+b.New-b.Deleted
}

func (b Balance) String() string {
	return fmt.Sprintf("cell (%d, %d): before=%d after=%d new=%d deleted=%d modified=%d",
		b.Cell.Row, b.Cell.Col, b.Before, b.After, b.New, b.Deleted, b.Modified)
}

// Audit checks every cell present in either grid. When a cell only balances
// by counting its modified buildings as new ones, they are reclassified NEW.
// The whole list is returned, imbalanced cells are those with !Balanced().
func Audit(oldGrid, newGrid *Grid) []Balance {
	cells := make(map[Cell]bool)
	for _, c := range oldGrid.Cells() {
		cells[c] = true
	}
	for _, c := range newGrid.Cells() {
		cells[c] = true
	}

	result := make([]Balance, 0, len(cells))
	for row := 0; row < max(oldGrid.Zones(), newGrid.Zones()); row++ {
		for col := 0; col < max(oldGrid.Zones(), newGrid.Zones()); col++ {
			c := Cell{Row: row, Col: col}
			if !cells[c] {
				continue
			}
			result = append(result, auditCell(c, oldGrid.Cell(c), newGrid.Cell(c)))
		}
	}
	return result
}

func auditCell(c Cell, before, after []*Building) Balance {
	b := Balance{
		Cell:   c,
		Before: len(before),
		After:  len(after),
	}
	for _, o := range before {
		if o.Status == StatusDeleted {
			b.Deleted++
		}
	}
	for _, n := range after {
		switch n.Status {
		case StatusNew:
			b.New++
		case StatusModified:
			b.Modified++
		}
	}

	if b.Balanced() {
		return b
	}
	if b.After != b.Before+b.New+b.Modified-b.Deleted {
		return b
	}

	for _, n := range after {
		if n.Status == StatusModified {
			n.Status = StatusNew
		}
	}
	b.New += b.Modified
	b.Modified = 0
	b.Corrected = true
	return b
}

// Imbalances filters the cells that stayed unbalanced.
func Imbalances(balances []Balance) []Balance {
	result := make([]Balance, 0)
	for _, b := range balances {
		if !b.Balanced() {
			result = append(result, b)
		}
	}
	return result
}
