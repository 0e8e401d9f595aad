package battleship

import (
	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
)

// Every session plays on a square grid of this size
const GridSize int = 10

// Offsets of the Moore neighbourhood around a position
var neighbourOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// X is the row and Y is the column, so a position
// is read as grid[x][y].
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

type Cell struct {
	ShipId  string `json:"ship_id,omitempty"`
	HasShip bool   `json:"has_ship"`
	HasShot bool   `json:"has_shot"`
}

type Grid [][]Cell

// Creates a new default grid
// All cells are empty and not shot
func NewGrid() Grid {
	grid := make(Grid, GridSize)

	for i := 0; i < GridSize; i++ {
		grid[i] = make([]Cell, GridSize)
	}
	return grid
}

func IsValidCoordinate(x, y int) bool {
	return x >= 0 && x < GridSize && y >= 0 && y < GridSize
}

func ValidateCoordinates(coords Coordinates) error {
	if !IsValidCoordinate(coords.X, coords.Y) {
		return cerr.ErrXorYOutOfGridBound(coords.X, coords.Y)
	}
	return nil
}

// Returns the surrounding positions of coords that lie
// inside the grid. The origin itself is never included.
func Neighbours(coords Coordinates) []Coordinates {
	neighbours := make([]Coordinates, 0, len(neighbourOffsets))

	for _, offset := range neighbourOffsets {
		x, y := coords.X+offset[0], coords.Y+offset[1]
		if IsValidCoordinate(x, y) {
			neighbours = append(neighbours, NewCoordinates(x, y))
		}
	}
	return neighbours
}

// Union of the neighbourhoods of every coordinate in
// coords, without duplicates and in first-seen order.
func neighboursOfSet(coords []Coordinates) []Coordinates {
	seen := make(map[Coordinates]struct{}, len(coords)*len(neighbourOffsets))
	result := make([]Coordinates, 0, len(coords)*3)

	for _, c := range coords {
		for _, n := range Neighbours(c) {
			if _, prs := seen[n]; prs {
				continue
			}
			seen[n] = struct{}{}
			result = append(result, n)
		}
	}
	return result
}
