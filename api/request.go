package api

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-playground/validator/v10"

	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
	mc "github.com/saeidalz13/battleship-fleet/models/connection"
)

type RequestHandler interface {
	HandleCreateGame(ctx context.Context, gc *GameController, defaultRuleset string) mc.Message[mc.RespCreateGame]
	HandleJoinGame(ctx context.Context, gc *GameController) mc.Message[mc.RespJoinGame]
	HandleAvailableShips(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespAvailableShips]
	HandlePlaceShip(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespPlaceShip]
	HandleRemoveShip(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespRemoveShip]
	HandleReady(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespReady]
	HandleAttack(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.ShotResult]
	HandleBoard(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespBoard]
}

// Every incoming request is a json message. The request is
// decoded and validated by the handler for its code.
type Request struct {
	payload  []byte
	validate *validator.Validate
}

var _ RequestHandler = (*Request)(nil)

func NewRequest(validate *validator.Validate, payload ...[]byte) Request {
	if len(payload) > 1 {
		log.Println("cannot accept more than one payload")
	}

	req := Request{validate: validate}
	if len(payload) != 0 {
		req.payload = payload[0]
	}
	return req
}

func decodePayload[T any](r Request) (T, error) {
	var msg mc.Message[T]
	if err := json.Unmarshal(r.payload, &msg); err != nil {
		return msg.Payload, err
	}
	if err := r.validate.Struct(msg.Payload); err != nil {
		return msg.Payload, err
	}
	return msg.Payload, nil
}

// The host creates the game session and joins it right away.
func (r Request) HandleCreateGame(ctx context.Context, gc *GameController, defaultRuleset string) mc.Message[mc.RespCreateGame] {
	resp := mc.NewMessage[mc.RespCreateGame](mc.CodeCreateGame)

	req, err := decodePayload[mc.ReqCreateGame](r)
	if err != nil {
		resp.AddError(err.Error(), "invalid create game payload")
		return resp
	}
	if req.Ruleset == "" {
		req.Ruleset = defaultRuleset
	}

	gameSessionId, err := gc.InitGameSession(ctx, req.Ruleset)
	if err != nil {
		resp.AddGameError(err, "failed to create game session")
		return resp
	}

	player, err := gc.CreatePlayerInSession(ctx, gameSessionId, req.PlayerName)
	if err != nil {
		gc.RemoveSession(ctx, gameSessionId)
		resp.AddGameError(err, "failed to create host player")
		return resp
	}

	resp.AddPayload(mc.RespCreateGame{
		GameSessionId: gameSessionId,
		Ruleset:       req.Ruleset,
		Player:        player,
	})
	return resp
}

func (r Request) HandleJoinGame(ctx context.Context, gc *GameController) mc.Message[mc.RespJoinGame] {
	resp := mc.NewMessage[mc.RespJoinGame](mc.CodeJoinGame)

	req, err := decodePayload[mc.ReqJoinGame](r)
	if err != nil {
		resp.AddError(err.Error(), "invalid join game payload")
		return resp
	}

	player, err := gc.CreatePlayerInSession(ctx, req.GameSessionId, req.PlayerName)
	if err != nil {
		resp.AddGameError(err, "failed to join game session")
		return resp
	}

	// the host may have left in the meantime
	opponent, ok, err := gc.Opponent(ctx, req.GameSessionId, player.PlayerId)
	if err != nil {
		resp.AddGameError(err, "failed to join game session")
		return resp
	}
	if !ok {
		resp.AddError("", "game session has no host")
		return resp
	}

	resp.AddPayload(mc.RespJoinGame{
		GameSessionId: req.GameSessionId,
		Player:        player,
		Opponent:      opponent,
	})
	return resp
}

func (r Request) HandleAvailableShips(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespAvailableShips] {
	resp := mc.NewMessage[mc.RespAvailableShips](mc.CodeAvailableShips)

	ships, err := gc.PreparedShips(ctx, gameSessionId, playerId)
	if err != nil {
		resp.AddGameError(err, "failed to fetch available ships")
		return resp
	}

	resp.AddPayload(mc.RespAvailableShips{Ships: ships})
	return resp
}

func (r Request) HandlePlaceShip(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespPlaceShip] {
	resp := mc.NewMessage[mc.RespPlaceShip](mc.CodePlaceShip)

	req, err := decodePayload[mc.ReqPlaceShip](r)
	if err != nil {
		resp.AddError(err.Error(), "invalid place ship payload")
		return resp
	}

	coords := mb.NewCoordinates(req.X, req.Y)
	shipsLeft, err := gc.AddShipToField(ctx, gameSessionId, playerId, req.ShipId, coords, req.Direction)
	if err != nil {
		resp.AddGameError(err, "failed to place ship")
		return resp
	}

	// an empty direction is horizontal
	direction, _ := mb.ParseDirection(req.Direction)
	resp.AddPayload(mc.RespPlaceShip{
		ShipId:    req.ShipId,
		X:         req.X,
		Y:         req.Y,
		Direction: direction.String(),
		ShipsLeft: shipsLeft,
	})
	return resp
}

func (r Request) HandleRemoveShip(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespRemoveShip] {
	resp := mc.NewMessage[mc.RespRemoveShip](mc.CodeRemoveShip)

	req, err := decodePayload[mc.ReqRemoveShip](r)
	if err != nil {
		resp.AddError(err.Error(), "invalid remove ship payload")
		return resp
	}

	removed, err := gc.RemoveShipFromField(ctx, gameSessionId, playerId, mb.NewCoordinates(req.X, req.Y))
	if err != nil {
		resp.AddGameError(err, "failed to remove ship")
		return resp
	}

	resp.AddPayload(mc.RespRemoveShip{X: req.X, Y: req.Y, Removed: removed})
	return resp
}

func (r Request) HandleReady(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespReady] {
	resp := mc.NewMessage[mc.RespReady](mc.CodeReady)

	isReady, err := gc.StartGame(ctx, gameSessionId, playerId)
	if err != nil {
		resp.AddGameError(err, "failed to get ready")
		return resp
	}

	resp.AddPayload(mc.RespReady{IsReady: isReady})
	return resp
}

func (r Request) HandleAttack(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.ShotResult] {
	resp := mc.NewMessage[mc.ShotResult](mc.CodeAttack)

	req, err := decodePayload[mc.ReqAttack](r)
	if err != nil {
		resp.AddError(err.Error(), "invalid attack payload")
		return resp
	}

	result, err := gc.MakeShot(ctx, gameSessionId, playerId, mb.NewCoordinates(req.X, req.Y))
	if err != nil {
		resp.AddGameError(err, "failed to attack")
		return resp
	}

	resp.AddPayload(result)
	return resp
}

// The own board in full, and the opponent's board the way
// the player is allowed to see it.
func (r Request) HandleBoard(ctx context.Context, gc *GameController, gameSessionId, playerId string) mc.Message[mc.RespBoard] {
	resp := mc.NewMessage[mc.RespBoard](mc.CodeBoard)

	own, err := gc.Field(ctx, gameSessionId, playerId, false)
	if err != nil {
		resp.AddGameError(err, "failed to fetch board")
		return resp
	}

	board := mc.RespBoard{Own: own}

	opponent, ok, err := gc.Opponent(ctx, gameSessionId, playerId)
	if err != nil {
		resp.AddGameError(err, "failed to fetch opponent")
		return resp
	}
	if ok {
		board.Opponent, err = gc.Field(ctx, gameSessionId, opponent.PlayerId, true)
		if err != nil {
			resp.AddGameError(err, "failed to fetch opponent board")
			return resp
		}
	}

	board.CellsLeft, err = gc.NumberOfCellsLeft(ctx, gameSessionId, playerId)
	if err != nil {
		resp.AddGameError(err, "failed to count cells")
		return resp
	}

	resp.AddPayload(board)
	return resp
}
