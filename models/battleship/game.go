package battleship

import (
	"strings"

	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
)

const maxPlayers = 2

type IdGenerator interface {
	GenerateId() string
}

// GameState is derived from the players and their boards,
// it is never stored.
type GameState uint8

const (
	GameStateWaitingForPlayers GameState = iota
	GameStatePreparing
	GameStateInProgress
	GameStateFinished
)

func (gs GameState) String() string {
	switch gs {
	case GameStateWaitingForPlayers:
		return "waiting_for_players"
	case GameStatePreparing:
		return "preparing"
	case GameStateInProgress:
		return "in_progress"
	default:
		return "finished"
	}
}

type Game struct {
	uuid           string
	ruleset        Ruleset
	idGenerator    IdGenerator
	players        []*Player
	activePlayerId string
}

func NewGame(uuid string, ruleset Ruleset, idGenerator IdGenerator) *Game {
	return &Game{
		uuid:        uuid,
		ruleset:     ruleset,
		idGenerator: idGenerator,
		players:     make([]*Player, 0, maxPlayers),
	}
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) Ruleset() Ruleset {
	return g.ruleset
}

// Empty until the first call to MakePlayerReady.
func (g *Game) ActivePlayerId() string {
	return g.activePlayerId
}

// returns the players in the order they joined.
func (g *Game) Players() []*Player {
	players := make([]*Player, len(g.players))
	copy(players, g.players)
	return players
}

func (g *Game) IsInitialized() bool {
	return len(g.players) == maxPlayers
}

func (g *Game) FindPlayer(playerUuid string) (*Player, error) {
	if strings.TrimSpace(playerUuid) == "" {
		return nil, cerr.ErrInvalidPlayerId(playerUuid)
	}

	for _, player := range g.players {
		if player.uuid == playerUuid {
			return player, nil
		}
	}
	return nil, cerr.ErrPlayerNotExist(playerUuid)
}

// Returns the other player of the game. ok is false when
// playerUuid is unknown or nobody else has joined yet.
func (g *Game) Opponent(playerUuid string) (opponent *Player, ok bool) {
	if _, err := g.FindPlayer(playerUuid); err != nil {
		return nil, false
	}

	for _, player := range g.players {
		if player.uuid != playerUuid {
			return player, true
		}
	}
	return nil, false
}

func (g *Game) State() GameState {
	if !g.IsInitialized() {
		return GameStateWaitingForPlayers
	}
	if !g.IsGameReady() {
		return GameStatePreparing
	}
	if g.IsGameFinished() {
		return GameStateFinished
	}
	return GameStateInProgress
}

// Adds a new player with an empty board and the whole fleet
// of the game ruleset waiting to be placed.
func (g *Game) AddPlayer(playerUuid, playerName string) (*Player, error) {
	if strings.TrimSpace(playerUuid) == "" {
		return nil, cerr.ErrInvalidPlayerId(playerUuid)
	}
	if strings.TrimSpace(playerName) == "" {
		return nil, cerr.ErrInvalidName(playerName)
	}
	if len(g.players) >= maxPlayers {
		return nil, cerr.ErrTooManyPlayers(g.uuid)
	}
	if _, err := g.FindPlayer(playerUuid); err == nil {
		return nil, cerr.ErrPlayerAlreadyExists(playerUuid)
	}

	fleet := make([]Ship, 0, 10)
	for _, config := range ShipConfigs(g.ruleset) {
		for i := 0; i < config.Amount; i++ {
			fleet = append(fleet, NewShip(g.idGenerator.GenerateId(), config.Size))
		}
	}

	player := NewPlayer(playerUuid, playerName, fleet)
	g.players = append(g.players, player)
	return player, nil
}

// Ships of the player that still need to be placed. The
// order is not meaningful; callers sort when they need to.
func (g *Game) AvailableShips(playerUuid string) ([]Ship, error) {
	player, err := g.FindPlayer(playerUuid)
	if err != nil {
		return nil, err
	}
	return player.ShipsNotOnBoard(), nil
}

// Places one of the player's waiting ships with its first cell
// at origin, using the direction carried by ship.
func (g *Game) AddShip(playerUuid string, origin Coordinates, ship Ship) error {
	player, err := g.FindPlayer(playerUuid)
	if err != nil {
		return err
	}
	if err := ValidateCoordinates(origin); err != nil {
		return err
	}
	return player.placeShip(origin, ship.Id, ship.Direction)
}

// Takes the ship at coords off the board and puts it back
// among the ships waiting for placement.
func (g *Game) RemoveShip(playerUuid string, coords Coordinates) (bool, error) {
	player, err := g.FindPlayer(playerUuid)
	if err != nil {
		return false, err
	}
	return player.takeBackShip(coords)
}

// The player becomes ready only once the whole fleet is on the
// board. The active player is recomputed on every call: it is the
// caller if the caller is the only one ready, the opponent otherwise.
func (g *Game) MakePlayerReady(playerUuid string) (bool, error) {
	player, err := g.FindPlayer(playerUuid)
	if err != nil {
		return false, err
	}

	opponent, ok := g.Opponent(playerUuid)
	if !ok {
		return false, cerr.ErrOpponentNotExist(playerUuid)
	}

	if player.AllShipsPlaced() {
		player.isReady = true
	}

	if player.isReady && !opponent.isReady {
		g.activePlayerId = player.uuid
	} else {
		g.activePlayerId = opponent.uuid
	}
	return player.isReady, nil
}

func (g *Game) IsGameReady() bool {
	if !g.IsInitialized() {
		return false
	}

	for _, player := range g.players {
		if !player.isReady || !player.AllShipsPlaced() {
			return false
		}
	}
	return true
}

func (g *Game) PlayerBoard(playerUuid string, isHidden bool) (Grid, error) {
	player, err := g.FindPlayer(playerUuid)
	if err != nil {
		return nil, err
	}
	return player.board.Cells(isHidden), nil
}

// What playerUuid is allowed to see of the opponent's board.
func (g *Game) OpponentBoard(playerUuid string) (Grid, error) {
	opponent, ok := g.Opponent(playerUuid)
	if !ok {
		return nil, cerr.ErrOpponentNotExist(playerUuid)
	}
	return opponent.board.Cells(true), nil
}

// Shoots at the opponent's board. A hit keeps the turn with
// the shooter, a miss hands it over to the opponent.
func (g *Game) MakeShot(shooterUuid string, coords Coordinates) (bool, error) {
	if _, err := g.FindPlayer(shooterUuid); err != nil {
		return false, err
	}

	opponent, ok := g.Opponent(shooterUuid)
	if !ok {
		return false, cerr.ErrOpponentNotExist(shooterUuid)
	}

	hit, err := opponent.board.MakeShot(coords)
	if err != nil {
		return false, err
	}

	if hit {
		g.activePlayerId = shooterUuid
	} else {
		g.activePlayerId = opponent.uuid
	}
	return hit, nil
}

func (g *Game) IsGameFinished() bool {
	for _, player := range g.players {
		if player.board.AmountOfAliveShips() == 0 {
			return true
		}
	}
	return false
}

// Returns the survivor of a finished game. There is no winner
// while any player is still preparing, since an empty board
// already counts as fully sunk.
func (g *Game) Winner() (*Player, bool) {
	if !g.IsInitialized() || !g.IsGameFinished() {
		return nil, false
	}

	for _, player := range g.players {
		if !player.isReady {
			return nil, false
		}
	}

	for _, player := range g.players {
		if player.board.AmountOfAliveShips() != 0 {
			return player, true
		}
	}
	panic(cerr.ErrGameNotFinished(g.uuid))
}
