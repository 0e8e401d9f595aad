package battleship

import (
	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
)

// Board is the defence grid of a single player. Every occupied
// cell belongs to exactly one entry of shipsOnBoard and every
// entry of shipsOnBoard points only to cells carrying its id.
type Board struct {
	cells        [GridSize][GridSize]Cell
	shipsOnBoard map[string][]Coordinates
}

func NewBoard() *Board {
	return &Board{
		shipsOnBoard: make(map[string][]Coordinates),
	}
}

func (b *Board) cell(coords Coordinates) *Cell {
	return &b.cells[coords.X][coords.Y]
}

// Checks that every position is inside the grid and
// free of ships. The first offending position wins.
func (b *Board) validateFree(coords []Coordinates) error {
	for _, c := range coords {
		if err := ValidateCoordinates(c); err != nil {
			return err
		}
		if b.cell(c).HasShip {
			return cerr.ErrCellOccupied(c.X, c.Y)
		}
	}
	return nil
}

// Places ship with its first cell at origin. Nothing is
// changed on the board unless the ship itself and the ring
// around it are free, since ships may never touch.
func (b *Board) AddShip(origin Coordinates, ship Ship) error {
	shipCoords := ship.coordinatesFrom(origin)
	if err := b.validateFree(shipCoords); err != nil {
		return err
	}

	if err := b.validateFree(neighboursOfSet(shipCoords)); err != nil {
		return err
	}

	for _, c := range shipCoords {
		cell := b.cell(c)
		cell.HasShip = true
		cell.ShipId = ship.Id
	}
	b.shipsOnBoard[ship.Id] = shipCoords
	return nil
}

// Removes the whole ship that covers coords and returns its id.
// An empty position is not an error; removed is false then.
func (b *Board) RemoveShip(coords Coordinates) (shipId string, removed bool, err error) {
	if err := ValidateCoordinates(coords); err != nil {
		return "", false, err
	}

	cell := b.cell(coords)
	if !cell.HasShip {
		return "", false, nil
	}

	if cell.ShipId == "" {
		panic(cerr.ErrShipWithoutId(coords.X, coords.Y))
	}

	shipId = cell.ShipId
	for _, c := range b.shipsOnBoard[shipId] {
		shipCell := b.cell(c)
		shipCell.HasShip = false
		shipCell.ShipId = ""
	}
	delete(b.shipsOnBoard, shipId)

	return shipId, true, nil
}

// Marks coords as shot and reports a hit. When the hit sinks
// the ship, the ring around the wreck is marked as shot too.
func (b *Board) MakeShot(coords Coordinates) (bool, error) {
	if err := ValidateCoordinates(coords); err != nil {
		return false, err
	}

	cell := b.cell(coords)
	cell.HasShot = true

	if cell.HasShip {
		b.processCellsAfterHit(cell.ShipId)
	}
	return cell.HasShip, nil
}

func (b *Board) processCellsAfterHit(shipId string) {
	shipCoords, prs := b.shipsOnBoard[shipId]
	if !prs {
		panic(cerr.NewGameErr(cerr.CodeShipWithoutId).AddDesc("hit ship is not registered on board: " + shipId))
	}

	if !b.isSunk(shipCoords) {
		return
	}

	for _, n := range neighboursOfSet(shipCoords) {
		b.cell(n).HasShot = true
	}
}

func (b *Board) isSunk(shipCoords []Coordinates) bool {
	for _, c := range shipCoords {
		cell := b.cell(c)
		if !cell.HasShip || !cell.HasShot {
			return false
		}
	}
	return true
}

// IsShipSunk reports whether the ship with shipId is on the
// board and every one of its cells has been hit.
func (b *Board) IsShipSunk(shipId string) bool {
	shipCoords, prs := b.shipsOnBoard[shipId]
	if !prs {
		return false
	}
	return b.isSunk(shipCoords)
}

// Returns the ship occupying coords, if any.
func (b *Board) ShipAt(coords Coordinates) (string, bool) {
	if !IsValidCoordinate(coords.X, coords.Y) {
		return "", false
	}
	cell := b.cell(coords)
	return cell.ShipId, cell.HasShip
}

func (b *Board) IsShot(coords Coordinates) bool {
	if !IsValidCoordinate(coords.X, coords.Y) {
		return false
	}
	return b.cell(coords).HasShot
}

func (b *Board) ShipCoordinates(shipId string) []Coordinates {
	shipCoords := b.shipsOnBoard[shipId]
	result := make([]Coordinates, len(shipCoords))
	copy(result, shipCoords)
	return result
}

// Returns a copy of the cells. A hidden grid is what the
// opponent sees: ship cells show up only once they are hit
// and ship ids are never revealed.
func (b *Board) Cells(isHidden bool) Grid {
	grid := NewGrid()

	for x := 0; x < GridSize; x++ {
		for y := 0; y < GridSize; y++ {
			cell := b.cells[x][y]
			if isHidden {
				grid[x][y] = Cell{
					HasShip: cell.HasShip && cell.HasShot,
					HasShot: cell.HasShot,
				}
				continue
			}
			grid[x][y] = cell
		}
	}
	return grid
}

func (b *Board) AmountOfNotShotCells() int {
	return b.countCells(func(c Cell) bool { return !c.HasShot })
}

// Counts ship CELLS that were not hit yet, not whole ships.
// The game is lost once this reaches zero.
func (b *Board) AmountOfAliveShips() int {
	return b.countCells(func(c Cell) bool { return c.HasShip && !c.HasShot })
}

func (b *Board) countCells(filter func(Cell) bool) int {
	count := 0
	for x := 0; x < GridSize; x++ {
		for y := 0; y < GridSize; y++ {
			if filter(b.cells[x][y]) {
				count++
			}
		}
	}
	return count
}
