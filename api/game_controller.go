package api

import (
	"context"
	"log"
	"sort"
	"sync"

	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
	"github.com/saeidalz13/battleship-fleet/internal/store"
	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
	mc "github.com/saeidalz13/battleship-fleet/models/connection"
)

// GameController runs every game operation against the session
// store: load the snapshot, rebuild the game, apply one
// operation, save the snapshot back.
type GameController struct {
	store    store.SessionStore
	idGen    mb.IdGenerator
	rulesets mb.Rulesets
	locks    *sessionLocks
}

func NewGameController(sessionStore store.SessionStore, idGen mb.IdGenerator, rulesets mb.Rulesets) *GameController {
	return &GameController{
		store:    sessionStore,
		idGen:    idGen,
		rulesets: rulesets,
		locks:    newSessionLocks(),
	}
}

// Operations on one game session never interleave, so no
// load-modify-save cycle overwrites another one.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (sl *sessionLocks) lock(sessionId string) (unlock func()) {
	sl.mu.Lock()
	l, prs := sl.locks[sessionId]
	if !prs {
		l = &sessionLock{}
		sl.locks[sessionId] = l
	}
	l.refs++
	sl.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		sl.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(sl.locks, sessionId)
		}
		sl.mu.Unlock()
	}
}

func (gc *GameController) loadGame(ctx context.Context, sessionId string) (*mb.Game, error) {
	snapshot, ok := gc.store.Load(ctx, sessionId)
	if !ok {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}
	return mb.RestoreGame(snapshot, gc.rulesets, gc.idGen)
}

func (gc *GameController) saveGame(ctx context.Context, game *mb.Game) error {
	if !gc.store.Save(ctx, game.Uuid(), game.Snapshot()) {
		return cerr.ErrSessionNotCreated(game.Uuid())
	}
	return nil
}

// Runs op on the game of sessionId and saves the game
// afterwards, unless op failed.
func (gc *GameController) update(ctx context.Context, sessionId string, op func(game *mb.Game) error) error {
	unlock := gc.locks.lock(sessionId)
	defer unlock()

	game, err := gc.loadGame(ctx, sessionId)
	if err != nil {
		return err
	}
	if err := op(game); err != nil {
		return err
	}
	return gc.saveGame(ctx, game)
}

func newPlayerDto(sessionId string, player *mb.Player) mc.PlayerDto {
	return mc.PlayerDto{
		PlayerName: player.Name(),
		PlayerId:   player.Uuid(),
		SessionId:  sessionId,
		IsReady:    player.IsReady(),
	}
}

// Creates an empty game session for rulesetName and
// returns its id.
func (gc *GameController) InitGameSession(ctx context.Context, rulesetName string) (string, error) {
	ruleset, err := gc.rulesets.Find(rulesetName)
	if err != nil {
		return "", err
	}

	sessionId := gc.idGen.GenerateId()
	if !gc.store.Save(ctx, sessionId, mb.NewSnapshot(sessionId, ruleset.Name())) {
		log.Println("session is not saved:", sessionId)
		return "", cerr.ErrSessionNotCreated(sessionId)
	}

	log.Printf("game session created: %s\truleset: %s\n", sessionId, ruleset.Name())
	return sessionId, nil
}

func (gc *GameController) CreatePlayerInSession(ctx context.Context, sessionId, playerName string) (mc.PlayerDto, error) {
	var dto mc.PlayerDto

	err := gc.update(ctx, sessionId, func(game *mb.Game) error {
		player, err := game.AddPlayer(gc.idGen.GenerateId(), playerName)
		if err != nil {
			return err
		}
		dto = newPlayerDto(sessionId, player)
		return nil
	})
	if err != nil {
		return mc.PlayerDto{}, err
	}

	log.Printf("player %s joined game session %s\n", dto.PlayerId, sessionId)
	return dto, nil
}

// Ships the player still has to place, smallest first.
func (gc *GameController) PreparedShips(ctx context.Context, sessionId, playerId string) ([]mc.ShipDto, error) {
	game, err := gc.loadGame(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	ships, err := game.AvailableShips(playerId)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ships, func(i, j int) bool { return ships[i].Size < ships[j].Size })

	dtos := make([]mc.ShipDto, 0, len(ships))
	for _, ship := range ships {
		dtos = append(dtos, mc.ShipDto{
			ShipId:    ship.Id,
			ShipSize:  ship.Size,
			Direction: ship.Direction.String(),
		})
	}
	return dtos, nil
}

// Places the waiting ship shipId with its first cell at coords.
// Returns the number of ships still waiting afterwards.
func (gc *GameController) AddShipToField(ctx context.Context, sessionId, playerId, shipId string, coords mb.Coordinates, direction string) (int, error) {
	shipDirection, err := mb.ParseDirection(direction)
	if err != nil {
		return 0, err
	}

	var shipsLeft int
	err = gc.update(ctx, sessionId, func(game *mb.Game) error {
		ships, err := game.AvailableShips(playerId)
		if err != nil {
			return err
		}

		for _, ship := range ships {
			if ship.Id != shipId {
				continue
			}
			ship.Direction = shipDirection
			if err := game.AddShip(playerId, coords, ship); err != nil {
				return err
			}
			shipsLeft = len(ships) - 1
			return nil
		}
		return cerr.ErrShipAlreadyPlaced(shipId)
	})
	return shipsLeft, err
}

func (gc *GameController) RemoveShipFromField(ctx context.Context, sessionId, playerId string, coords mb.Coordinates) (bool, error) {
	var removed bool

	err := gc.update(ctx, sessionId, func(game *mb.Game) error {
		var err error
		removed, err = game.RemoveShip(playerId, coords)
		return err
	})
	return removed, err
}

// Marks the player ready when the whole fleet is placed and
// reports whether the player is ready now.
func (gc *GameController) StartGame(ctx context.Context, sessionId, playerId string) (bool, error) {
	var ready bool

	err := gc.update(ctx, sessionId, func(game *mb.Game) error {
		switch game.State() {
		case mb.GameStateInProgress, mb.GameStateFinished:
			return cerr.ErrGameAlreadyStarted(sessionId)
		}

		var err error
		ready, err = game.MakePlayerReady(playerId)
		return err
	})
	return ready, err
}

// Shoots at the opponent of playerId. Only the active player of
// a game in progress may shoot, and only at cells not shot yet.
func (gc *GameController) MakeShot(ctx context.Context, sessionId, playerId string, coords mb.Coordinates) (mc.ShotResult, error) {
	result := mc.ShotResult{X: coords.X, Y: coords.Y}

	err := gc.update(ctx, sessionId, func(game *mb.Game) error {
		if _, err := game.FindPlayer(playerId); err != nil {
			return err
		}
		if game.State() != mb.GameStateInProgress {
			return cerr.ErrGameNotInProgress(sessionId)
		}
		if game.ActivePlayerId() != playerId {
			return cerr.ErrNotTurnForAttacker(playerId)
		}
		if err := mb.ValidateCoordinates(coords); err != nil {
			return err
		}

		opponent, ok := game.Opponent(playerId)
		if !ok {
			panic("this will never happen")
		}
		if opponent.Board().IsShot(coords) {
			return cerr.ErrDefenceGridPositionAlreadyHit(coords.X, coords.Y)
		}

		hit, err := game.MakeShot(playerId, coords)
		if err != nil {
			return err
		}

		result.Hit = hit
		if shipId, hasShip := opponent.Board().ShipAt(coords); hasShip {
			result.IsShipSunk = opponent.Board().IsShipSunk(shipId)
		}
		result.IsFinished = game.IsGameFinished()
		result.NextPlayerId = game.ActivePlayerId()
		return nil
	})
	if err != nil {
		return mc.ShotResult{}, err
	}

	if result.IsFinished {
		log.Printf("game session %s finished, winner: %s\n", sessionId, playerId)
	}
	return result, nil
}

// The board of playerId with row and column on every cell. With
// forOpponent set, the board is shown the way the opponent of
// playerId sees it.
func (gc *GameController) Field(ctx context.Context, sessionId, playerId string, forOpponent bool) ([][]mc.FieldCell, error) {
	game, err := gc.loadGame(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	grid, err := game.PlayerBoard(playerId, forOpponent)
	if err != nil {
		return nil, err
	}
	return indexGrid(grid, !forOpponent), nil
}

func indexGrid(grid mb.Grid, markUnavailable bool) [][]mc.FieldCell {
	field := make([][]mc.FieldCell, len(grid))

	for x, row := range grid {
		field[x] = make([]mc.FieldCell, len(row))
		for y, cell := range row {
			fc := mc.FieldCell{
				ShipId:  cell.ShipId,
				HasShip: cell.HasShip,
				HasShot: cell.HasShot,
				Row:     x,
				Col:     y,
			}

			if markUnavailable {
				fc.IsNotAvailable = cell.HasShip
				for _, n := range mb.Neighbours(mb.NewCoordinates(x, y)) {
					if grid[n.X][n.Y].HasShip {
						fc.IsNotAvailable = true
						break
					}
				}
			}
			field[x][y] = fc
		}
	}
	return field
}

func (gc *GameController) Opponent(ctx context.Context, sessionId, playerId string) (mc.PlayerDto, bool, error) {
	game, err := gc.loadGame(ctx, sessionId)
	if err != nil {
		return mc.PlayerDto{}, false, err
	}

	opponent, ok := game.Opponent(playerId)
	if !ok {
		return mc.PlayerDto{}, false, nil
	}
	return newPlayerDto(sessionId, opponent), true, nil
}

// The player whose move it is. Nobody is active before the
// first player got ready.
func (gc *GameController) ActivePlayer(ctx context.Context, sessionId string) (mc.PlayerDto, bool, error) {
	game, err := gc.loadGame(ctx, sessionId)
	if err != nil {
		return mc.PlayerDto{}, false, err
	}
	if game.ActivePlayerId() == "" {
		return mc.PlayerDto{}, false, nil
	}

	player, err := game.FindPlayer(game.ActivePlayerId())
	if err != nil {
		return mc.PlayerDto{}, false, nil
	}
	return newPlayerDto(sessionId, player), true, nil
}

func (gc *GameController) PlayerById(ctx context.Context, sessionId, playerId string) (mc.PlayerDto, bool, error) {
	game, err := gc.loadGame(ctx, sessionId)
	if err != nil {
		return mc.PlayerDto{}, false, err
	}

	player, err := game.FindPlayer(playerId)
	if err != nil {
		return mc.PlayerDto{}, false, nil
	}
	return newPlayerDto(sessionId, player), true, nil
}

// Cells of the player's board not shot yet. Always 0 before
// both players are ready.
func (gc *GameController) NumberOfCellsLeft(ctx context.Context, sessionId, playerId string) (int, error) {
	game, err := gc.loadGame(ctx, sessionId)
	if err != nil {
		return 0, err
	}
	if !game.IsGameReady() {
		return 0, nil
	}

	player, err := game.FindPlayer(playerId)
	if err != nil {
		return 0, err
	}
	return player.Board().AmountOfNotShotCells(), nil
}

func (gc *GameController) Winner(ctx context.Context, sessionId string) (mc.PlayerDto, bool, error) {
	game, err := gc.loadGame(ctx, sessionId)
	if err != nil {
		return mc.PlayerDto{}, false, err
	}

	winner, ok := game.Winner()
	if !ok {
		return mc.PlayerDto{}, false, nil
	}
	return newPlayerDto(sessionId, winner), true, nil
}

func (gc *GameController) GameState(ctx context.Context, sessionId string) (mb.GameState, error) {
	game, err := gc.loadGame(ctx, sessionId)
	if err != nil {
		return mb.GameStateWaitingForPlayers, err
	}
	return game.State(), nil
}

func (gc *GameController) RemoveSession(ctx context.Context, sessionId string) bool {
	unlock := gc.locks.lock(sessionId)
	defer unlock()

	removed := gc.store.Remove(ctx, sessionId)
	if removed {
		log.Println("game session removed:", sessionId)
	}
	return removed
}
