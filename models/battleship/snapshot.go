package battleship

import (
	"fmt"

	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
)

// Snapshot is the serializable state of a whole game. It is
// what session stores save and load between requests.
type Snapshot struct {
	SessionId      string           `json:"session_id"`
	Ruleset        string           `json:"ruleset"`
	Players        []PlayerSnapshot `json:"players"`
	ActivePlayerId string           `json:"active_player_id"`
}

type PlayerSnapshot struct {
	PlayerId        string                   `json:"player_id"`
	PlayerName      string                   `json:"player_name"`
	IsReady         bool                     `json:"is_ready"`
	Cells           Grid                     `json:"cells"`
	Ships           []Ship                   `json:"ships"`
	ShipsNotOnBoard []string                 `json:"ships_not_on_board"`
	ShipsOnBoard    map[string][]Coordinates `json:"ships_on_board"`
}

func NewSnapshot(sessionId, ruleset string) Snapshot {
	return Snapshot{
		SessionId: sessionId,
		Ruleset:   ruleset,
		Players:   []PlayerSnapshot{},
	}
}

func (g *Game) Snapshot() Snapshot {
	snap := NewSnapshot(g.uuid, g.ruleset.Name())
	snap.ActivePlayerId = g.activePlayerId

	for _, player := range g.players {
		ps := PlayerSnapshot{
			PlayerId:        player.uuid,
			PlayerName:      player.name,
			IsReady:         player.isReady,
			Cells:           player.board.Cells(false),
			Ships:           player.AllShips(),
			ShipsNotOnBoard: make([]string, 0, len(player.notOnBoard)),
			ShipsOnBoard:    make(map[string][]Coordinates, len(player.board.shipsOnBoard)),
		}
		for _, ship := range player.ShipsNotOnBoard() {
			ps.ShipsNotOnBoard = append(ps.ShipsNotOnBoard, ship.Id)
		}
		for shipId := range player.board.shipsOnBoard {
			ps.ShipsOnBoard[shipId] = player.board.ShipCoordinates(shipId)
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap
}

// Rebuilds a game from snap. The snapshot comes from outside
// the process, so every board invariant is checked before the
// game is handed out.
func RestoreGame(snap Snapshot, rulesets Rulesets, idGenerator IdGenerator) (*Game, error) {
	ruleset, err := rulesets.Find(snap.Ruleset)
	if err != nil {
		return nil, err
	}
	if len(snap.Players) > maxPlayers {
		return nil, cerr.ErrCorruptSnapshot(fmt.Sprintf("%d players", len(snap.Players)))
	}

	game := NewGame(snap.SessionId, ruleset, idGenerator)
	for _, ps := range snap.Players {
		if _, err := game.FindPlayer(ps.PlayerId); err == nil {
			return nil, cerr.ErrCorruptSnapshot("duplicate player " + ps.PlayerId)
		}

		if err := matchFleet(ps, ruleset); err != nil {
			return nil, err
		}

		player, err := restorePlayer(ps)
		if err != nil {
			return nil, err
		}
		game.players = append(game.players, player)
	}

	if len(game.players) < maxPlayers {
		for _, player := range game.players {
			if player.isReady {
				return nil, cerr.ErrCorruptSnapshot("player is ready without an opponent")
			}
		}
	}

	if snap.ActivePlayerId != "" {
		if _, err := game.FindPlayer(snap.ActivePlayerId); err != nil {
			return nil, cerr.ErrCorruptSnapshot("unknown active player " + snap.ActivePlayerId)
		}
	}
	game.activePlayerId = snap.ActivePlayerId

	return game, nil
}

// The fleet of a player is the one the ruleset hands out,
// counted by ship size.
func matchFleet(ps PlayerSnapshot, ruleset Ruleset) error {
	expected := make(map[int]int)
	for _, config := range ShipConfigs(ruleset) {
		expected[config.Size] += config.Amount
	}

	for _, ship := range ps.Ships {
		if expected[ship.Size] == 0 {
			return cerr.ErrCorruptSnapshot(fmt.Sprintf("fleet of %s does not match ruleset %s", ps.PlayerId, ruleset.Name()))
		}
		expected[ship.Size]--
	}

	for _, left := range expected {
		if left != 0 {
			return cerr.ErrCorruptSnapshot(fmt.Sprintf("fleet of %s does not match ruleset %s", ps.PlayerId, ruleset.Name()))
		}
	}
	return nil
}

func restorePlayer(ps PlayerSnapshot) (*Player, error) {
	player := NewPlayer(ps.PlayerId, ps.PlayerName, ps.Ships)
	player.isReady = ps.IsReady

	if len(player.shipIndex) != len(ps.Ships) {
		return nil, cerr.ErrCorruptSnapshot("duplicate ship ids for player " + ps.PlayerId)
	}

	player.notOnBoard = make(map[string]struct{}, len(ps.ShipsNotOnBoard))
	for _, shipId := range ps.ShipsNotOnBoard {
		if _, prs := player.shipIndex[shipId]; !prs {
			return nil, cerr.ErrCorruptSnapshot("unknown ship waiting for placement " + shipId)
		}
		player.notOnBoard[shipId] = struct{}{}
	}

	if err := restoreBoard(player, ps); err != nil {
		return nil, err
	}

	// Every ship is either on the board or waiting, never both.
	for _, ship := range player.ships {
		_, waiting := player.notOnBoard[ship.Id]
		_, placed := player.board.shipsOnBoard[ship.Id]
		if waiting == placed {
			return nil, cerr.ErrCorruptSnapshot("ship is not accounted for exactly once " + ship.Id)
		}
	}

	if player.isReady && !player.AllShipsPlaced() {
		return nil, cerr.ErrCorruptSnapshot("ready player still has ships to place " + ps.PlayerId)
	}
	return player, nil
}

func restoreBoard(player *Player, ps PlayerSnapshot) error {
	if len(ps.Cells) != GridSize {
		return cerr.ErrCorruptSnapshot("grid has wrong number of rows")
	}

	board := player.board
	occupied := 0
	for x, row := range ps.Cells {
		if len(row) != GridSize {
			return cerr.ErrCorruptSnapshot("grid has wrong number of columns")
		}
		for y, cell := range row {
			if cell.HasShip != (cell.ShipId != "") {
				return cerr.ErrCorruptSnapshot(fmt.Sprintf("cell ship id mismatch at x: %d y: %d", x, y))
			}
			if cell.HasShip {
				occupied++
			}
			board.cells[x][y] = cell
		}
	}

	registered := 0
	seen := make(map[Coordinates]struct{}, occupied)
	for shipId, coords := range ps.ShipsOnBoard {
		ship, prs := player.findShip(shipId)
		if !prs || len(coords) != ship.Size {
			return cerr.ErrCorruptSnapshot("ship on board does not match fleet " + shipId)
		}
		for _, c := range coords {
			if !IsValidCoordinate(c.X, c.Y) || board.cell(c).ShipId != shipId {
				return cerr.ErrCorruptSnapshot("ship coordinates do not match cells " + shipId)
			}
			if _, dup := seen[c]; dup {
				return cerr.ErrCorruptSnapshot("ship coordinates repeat " + shipId)
			}
			seen[c] = struct{}{}
		}
		shipCoords := make([]Coordinates, len(coords))
		copy(shipCoords, coords)
		board.shipsOnBoard[shipId] = shipCoords
		registered += len(coords)
	}

	if registered != occupied {
		return cerr.ErrCorruptSnapshot("occupied cells do not match ships on board")
	}
	return nil
}
