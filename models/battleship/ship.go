package battleship

import (
	"strings"

	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
)

type Direction uint8

const (
	DirectionHorizontal Direction = iota
	DirectionVertical
)

func (d Direction) String() string {
	if d == DirectionVertical {
		return "VERTICAL"
	}
	return "HORIZONTAL"
}

func ParseDirection(direction string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(direction)) {
	case "HORIZONTAL", "":
		return DirectionHorizontal, nil
	case "VERTICAL":
		return DirectionVertical, nil
	default:
		return DirectionHorizontal, cerr.ErrInvalidDirection(direction)
	}
}

type Ship struct {
	Id        string    `json:"ship_id"`
	Size      int       `json:"size"`
	Direction Direction `json:"direction"`
}

func NewShip(id string, size int) Ship {
	return Ship{
		Id:        id,
		Size:      size,
		Direction: DirectionHorizontal,
	}
}

// Positions the ship occupies when its first cell is at
// origin. Horizontal ships grow along y, vertical along x.
func (sh Ship) coordinatesFrom(origin Coordinates) []Coordinates {
	coords := make([]Coordinates, 0, sh.Size)

	for diff := 0; diff < sh.Size; diff++ {
		if sh.Direction == DirectionHorizontal {
			coords = append(coords, NewCoordinates(origin.X, origin.Y+diff))
		} else {
			coords = append(coords, NewCoordinates(origin.X+diff, origin.Y))
		}
	}
	return coords
}
