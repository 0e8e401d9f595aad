package battleship

import (
	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
)

// Player owns its fleet as a single table of ships. Ships that
// still wait for placement are tracked by id in notOnBoard, so
// there is only ever one copy of each ship.
type Player struct {
	uuid       string
	name       string
	isReady    bool
	board      *Board
	ships      []Ship
	shipIndex  map[string]int
	notOnBoard map[string]struct{}
}

func NewPlayer(uuid, name string, fleet []Ship) *Player {
	p := &Player{
		uuid:       uuid,
		name:       name,
		board:      NewBoard(),
		ships:      make([]Ship, 0, len(fleet)),
		shipIndex:  make(map[string]int, len(fleet)),
		notOnBoard: make(map[string]struct{}, len(fleet)),
	}

	for _, ship := range fleet {
		p.shipIndex[ship.Id] = len(p.ships)
		p.ships = append(p.ships, ship)
		p.notOnBoard[ship.Id] = struct{}{}
	}
	return p
}

func (p *Player) Uuid() string {
	return p.uuid
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) IsReady() bool {
	return p.isReady
}

func (p *Player) Board() *Board {
	return p.board
}

// Returns the whole fleet of the player in generation order.
func (p *Player) AllShips() []Ship {
	ships := make([]Ship, len(p.ships))
	copy(ships, p.ships)
	return ships
}

// Returns the ships that are not on the board yet.
func (p *Player) ShipsNotOnBoard() []Ship {
	ships := make([]Ship, 0, len(p.notOnBoard))
	for _, ship := range p.ships {
		if _, prs := p.notOnBoard[ship.Id]; prs {
			ships = append(ships, ship)
		}
	}
	return ships
}

func (p *Player) AllShipsPlaced() bool {
	return len(p.notOnBoard) == 0
}

func (p *Player) findShip(shipId string) (Ship, bool) {
	idx, prs := p.shipIndex[shipId]
	if !prs {
		return Ship{}, false
	}
	return p.ships[idx], true
}

func (p *Player) placeShip(origin Coordinates, shipId string, direction Direction) error {
	if _, prs := p.notOnBoard[shipId]; !prs {
		return cerr.ErrShipAlreadyPlaced(shipId)
	}

	ship, _ := p.findShip(shipId)
	ship.Direction = direction
	if err := p.board.AddShip(origin, ship); err != nil {
		return err
	}

	p.ships[p.shipIndex[shipId]] = ship
	delete(p.notOnBoard, shipId)
	return nil
}

func (p *Player) takeBackShip(coords Coordinates) (bool, error) {
	shipId, removed, err := p.board.RemoveShip(coords)
	if err != nil || !removed {
		return false, err
	}

	if _, prs := p.shipIndex[shipId]; !prs {
		panic(cerr.NewGameErr(cerr.CodeShipWithoutId).AddDesc("removed ship does not belong to player: " + shipId))
	}
	p.notOnBoard[shipId] = struct{}{}
	return true, nil
}
