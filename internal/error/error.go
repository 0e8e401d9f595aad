package error

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidInput uint8 = iota
	CodeCoordinateOutOfBounds
	CodeCellOccupied
	CodeShipAlreadyPlaced
	CodeShipWithoutId
	CodeTooManyPlayers
	CodePlayerAlreadyExists
	CodePlayerNotFound
	CodeGameNotFinished
	CodeSessionNotCreated
	CodeSessionNotFound
	CodeInvalidRuleset
	CodeNotTurnForAttacker
	CodePositionAlreadyHit
	CodeGameNotInProgress
	CodeCorruptSnapshot
	CodeGameAlreadyStarted
)

// GameErr carries a failure code so callers can branch on
// the kind of failure without comparing messages.
type GameErr struct {
	code uint8
	desc string
}

func NewGameErr(code uint8) GameErr {
	return GameErr{code: code}
}

func (g GameErr) AddDesc(desc string) GameErr {
	g.desc = desc
	return g
}

func (g GameErr) Error() string {
	return g.desc
}

func (g GameErr) Code() uint8 {
	return g.code
}

// Two GameErr values match when their codes match
func (g GameErr) Is(target error) bool {
	t, ok := target.(GameErr)
	if !ok {
		return false
	}
	return t.code == g.code
}

func HasCode(err error, code uint8) bool {
	return errors.Is(err, NewGameErr(code))
}

func ErrInvalidPlayerId(playerUuid string) error {
	return NewGameErr(CodeInvalidInput).AddDesc(fmt.Sprintf("player id is not valid: %q", playerUuid))
}

func ErrInvalidName(name string) error {
	return NewGameErr(CodeInvalidInput).AddDesc(fmt.Sprintf("player name is not valid: %q", name))
}

func ErrInvalidDirection(direction string) error {
	return NewGameErr(CodeInvalidInput).AddDesc(fmt.Sprintf("ship direction is not valid: %q", direction))
}

func ErrXorYOutOfGridBound(x, y int) error {
	return NewGameErr(CodeCoordinateOutOfBounds).AddDesc(fmt.Sprintf("incoming x or y is out of game grid bound\tx: %d\ty: %d", x, y))
}

func ErrCellOccupied(x, y int) error {
	return NewGameErr(CodeCellOccupied).AddDesc(fmt.Sprintf("current position in grid already taken\tx: %d\ty: %d", x, y))
}

func ErrShipAlreadyPlaced(shipId string) error {
	return NewGameErr(CodeShipAlreadyPlaced).AddDesc(fmt.Sprintf("ship is already on the board or does not belong to player: %s", shipId))
}

func ErrShipWithoutId(x, y int) error {
	return NewGameErr(CodeShipWithoutId).AddDesc(fmt.Sprintf("ship cell does not carry a ship id\tx: %d\ty: %d", x, y))
}

func ErrTooManyPlayers(gameUuid string) error {
	return NewGameErr(CodeTooManyPlayers).AddDesc(fmt.Sprintf("game already has two players, uuid: %s", gameUuid))
}

func ErrPlayerAlreadyExists(playerUuid string) error {
	return NewGameErr(CodePlayerAlreadyExists).AddDesc(fmt.Sprintf("player with this uuid already exists, uuid: %s", playerUuid))
}

func ErrPlayerNotExist(playerUuid string) error {
	return NewGameErr(CodePlayerNotFound).AddDesc(fmt.Sprintf("player with this uuid does not exist, uuid: %s", playerUuid))
}

func ErrOpponentNotExist(playerUuid string) error {
	return NewGameErr(CodePlayerNotFound).AddDesc(fmt.Sprintf("opponent has not joined yet for player, uuid: %s", playerUuid))
}

func ErrGameNotFinished(gameUuid string) error {
	return NewGameErr(CodeGameNotFinished).AddDesc(fmt.Sprintf("game is finished but no survivor exists, uuid: %s", gameUuid))
}

func ErrSessionNotCreated(sessionId string) error {
	return NewGameErr(CodeSessionNotCreated).AddDesc(fmt.Sprintf("session could not be saved, id: %s", sessionId))
}

func ErrSessionNotFound(sessionId string) error {
	return NewGameErr(CodeSessionNotFound).AddDesc(fmt.Sprintf("session with this id does not exist, id: %s", sessionId))
}

func ErrInvalidRuleset(name string) error {
	return NewGameErr(CodeInvalidRuleset).AddDesc(fmt.Sprintf("ruleset is not registered: %q", name))
}

func ErrNotTurnForAttacker(playerUuid string) error {
	return NewGameErr(CodeNotTurnForAttacker).AddDesc(fmt.Sprintf("not the turn of the attacker, uuid: %s", playerUuid))
}

func ErrDefenceGridPositionAlreadyHit(x, y int) error {
	return NewGameErr(CodePositionAlreadyHit).AddDesc(fmt.Sprintf("this position is already hit by the attacker in previous rounds\tx: %d\ty: %d", x, y))
}

func ErrGameNotInProgress(gameUuid string) error {
	return NewGameErr(CodeGameNotInProgress).AddDesc(fmt.Sprintf("game is not in progress, uuid: %s", gameUuid))
}

func ErrCorruptSnapshot(reason string) error {
	return NewGameErr(CodeCorruptSnapshot).AddDesc("session snapshot is corrupt: " + reason)
}

func ErrGameAlreadyStarted(gameUuid string) error {
	return NewGameErr(CodeGameAlreadyStarted).AddDesc(fmt.Sprintf("game has already started, uuid: %s", gameUuid))
}
