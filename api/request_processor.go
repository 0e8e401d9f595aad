package api

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/saeidalz13/battleship-fleet/db/sqlc"
	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
	mc "github.com/saeidalz13/battleship-fleet/models/connection"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"

	// upper bound for one game operation against the store
	operationTimeout = time.Second * 10

	// requests are a few hundred bytes, interactions a bit more
	maxMessageSize int64 = 4096
)

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		// probably more that enough but this is a good average size
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}

type RequestProcessor struct {
	sessionManager mc.SessionManager
	controller     *GameController
	validate       *validator.Validate
	upgrader       websocket.Upgrader
	ipnet          net.IPNet
	defaultRuleset string

	// nil when no database is configured
	analytics *sqlc.AnalyticsManager
}

type ProcessorOption func(*RequestProcessor)

func WithAnalytics(analytics *sqlc.AnalyticsManager) ProcessorOption {
	return func(rp *RequestProcessor) {
		rp.analytics = analytics
	}
}

func WithDefaultRuleset(ruleset string) ProcessorOption {
	return func(rp *RequestProcessor) {
		rp.defaultRuleset = ruleset
	}
}

func NewRequestProcessor(sessionManager mc.SessionManager, controller *GameController, opts ...ProcessorOption) *RequestProcessor {
	rp := &RequestProcessor{
		sessionManager: sessionManager,
		controller:     controller,
		validate:       validator.New(),
		upgrader:       newUpgrader(),
		ipnet:          serverIpNet(),
		defaultRuleset: mb.RulesetClassic,
	}

	for _, opt := range opts {
		opt(rp)
	}
	return rp
}

// The first IPv4 network of an interface that is up and not
// the loopback. Analytics are kept per server, so without
// such an interface the loopback network is used.
func serverIpNet() net.IPNet {
	loopback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(8, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Println("failed to list network interfaces:", err)
		return loopback
	}

	for _, iface := range ifaces {
		// If the flag is down
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			log.Println("failed to list interface addresses:", err)
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ipnet.IP.To4() != nil && !ipnet.IP.IsLoopback() {
				return *ipnet
			}
		}
	}

	return loopback
}

// Expose this method to use it in testing
func (rp *RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := rp.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		log.Println("a new connection established\tRemote Addr: ", conn.RemoteAddr().String())
		rp.processSessionRequests(r.Context(), rp.sessionManager.GenerateNewSession(conn))

	default:
		// The loop of the session keeps running on the new connection
		if err := rp.sessionManager.ReconnectSession(sessionIdQuery, conn); err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID)
			msg.AddError(err.Error(), "session id is not valid anymore")
			if err := conn.WriteJSON(msg); err != nil {
				log.Println(err)
			}
			conn.Close()
		}
	}
}

func (rp *RequestProcessor) processSessionRequests(ctx context.Context, session *mc.Session) {
	session.StartServing()
	defer func() {
		session.StopServing()
		rp.leaveGame(session)
		if conn := session.Conn(); conn != nil {
			conn.Close()
		}
		rp.sessionManager.TerminateSession(session.Id())
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: session.Id()})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// This error happens after retries. If it's not nil,
			// then something was wrong with the session connection
			// and couldn't be resolved
			break sessionLoop
		}

		var signal mc.Signal

		if err := json.Unmarshal(payload, &signal); err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError("incoming req payload must contain 'code' field", "")
			if err = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		opCtx, cancel := context.WithTimeout(ctx, operationTimeout)
		err = rp.processSignal(opCtx, session, signal.Code, payload)
		cancel()
		if err != nil {
			break sessionLoop
		}
	}
}

// Handles one request of the session. A returned error means
// the connection of the session cannot be used anymore.
func (rp *RequestProcessor) processSignal(ctx context.Context, session *mc.Session, code uint8, payload []byte) error {
	var (
		req           = NewRequest(rp.validate, payload)
		gameSessionId = session.GameSessionId()
		playerId      = session.PlayerId()
	)

	// Every request except creating and joining needs a game
	switch code {
	case mc.CodeCreateGame, mc.CodeJoinGame:
		if gameSessionId != "" {
			msg := mc.NewMessage[mc.NoPayload](code)
			msg.AddError("", "connection is already bound to a game session")
			return rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON)
		}

	case mc.CodeAvailableShips, mc.CodePlaceShip, mc.CodeRemoveShip, mc.CodeReady, mc.CodeAttack, mc.CodeBoard, mc.CodePlayerInteraction:
		if gameSessionId == "" {
			msg := mc.NewMessage[mc.NoPayload](code)
			msg.AddError("", "create or join a game first")
			return rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON)
		}
	}

	switch code {

	// In this branch we initialize the game and hence create a host player
	case mc.CodeCreateGame:
		respMsg := req.HandleCreateGame(ctx, rp.controller, rp.defaultRuleset)
		if respMsg.Error == nil {
			rp.sessionManager.BindPlayer(session, respMsg.Payload.GameSessionId, respMsg.Payload.Player.PlayerId)
			if rp.analytics != nil {
				rp.analytics.RecordGameCreated(rp.ipnet)
			}
		}
		return rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON)

	// This branch handles joining a new player to an existing
	// game. The host learns about its opponent.
	case mc.CodeJoinGame:
		respMsg := req.HandleJoinGame(ctx, rp.controller)
		if respMsg.Error != nil {
			return rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON)
		}

		joinPlayer, hostPlayer := respMsg.Payload.Player, respMsg.Payload.Opponent
		rp.sessionManager.BindPlayer(session, respMsg.Payload.GameSessionId, joinPlayer.PlayerId)
		rp.sessionManager.LinkOpponents(joinPlayer.PlayerId, hostPlayer.PlayerId)

		if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
			return err
		}

		joinedMsg := mc.NewMessage[mc.RespOtherPlayerJoined](mc.CodeOtherPlayerJoined)
		joinedMsg.AddPayload(mc.RespOtherPlayerJoined{Opponent: joinPlayer})
		rp.notifyOpponent(session, joinedMsg)
		return nil

	case mc.CodeAvailableShips:
		respMsg := req.HandleAvailableShips(ctx, rp.controller, gameSessionId, playerId)
		return rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON)

	case mc.CodePlaceShip:
		respMsg := req.HandlePlaceShip(ctx, rp.controller, gameSessionId, playerId)
		return rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON)

	case mc.CodeRemoveShip:
		respMsg := req.HandleRemoveShip(ctx, rp.controller, gameSessionId, playerId)
		return rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON)

	// The player has placed the whole fleet. Once both players
	// are ready, both of them are told who shoots first.
	case mc.CodeReady:
		respMsg := req.HandleReady(ctx, rp.controller, gameSessionId, playerId)
		if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
			return err
		}
		if respMsg.Error != nil || !respMsg.Payload.IsReady {
			return nil
		}

		rp.notifyOpponent(session, mc.NewMessage[mc.NoPayload](mc.CodeOtherPlayerReady))

		state, err := rp.controller.GameState(ctx, gameSessionId)
		if err != nil || state != mb.GameStateInProgress {
			return nil
		}
		activePlayer, ok, err := rp.controller.ActivePlayer(ctx, gameSessionId)
		if err != nil || !ok {
			return nil
		}

		startMsg := mc.NewMessage[mc.RespStartGame](mc.CodeStartGame)
		startMsg.AddPayload(mc.RespStartGame{ActivePlayerId: activePlayer.PlayerId})
		if err := rp.sessionManager.WriteToSessionConn(session, startMsg, mc.MessageTypeJSON); err != nil {
			return err
		}
		rp.notifyOpponent(session, startMsg)
		return nil

	// Both players get the result of the shot. The shot that
	// sinks the last ship also ends the game for both.
	case mc.CodeAttack:
		respMsg := req.HandleAttack(ctx, rp.controller, gameSessionId, playerId)
		if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
			return err
		}

		// This means attack operation did not complete
		if respMsg.Error != nil {
			return nil
		}
		rp.notifyOpponent(session, respMsg)

		if !respMsg.Payload.IsFinished {
			return nil
		}
		return rp.endGame(ctx, session, gameSessionId)

	case mc.CodeBoard:
		respMsg := req.HandleBoard(ctx, rp.controller, gameSessionId, playerId)
		return rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON)

	case mc.CodePlayerInteraction:
		rp.notifyOpponent(session, payload)
		return nil

	default:
		respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
		respInvalidSignal.AddError("", "invalid code in the incoming payload")
		return rp.sessionManager.WriteToSessionConn(session, respInvalidSignal, mc.MessageTypeJSON)
	}
}

func (rp *RequestProcessor) endGame(ctx context.Context, session *mc.Session, gameSessionId string) error {
	winner, ok, err := rp.controller.Winner(ctx, gameSessionId)
	if err != nil || !ok {
		log.Printf("finished game session %s has no winner: %v\n", gameSessionId, err)
		return nil
	}

	if rp.analytics != nil {
		rp.analytics.RecordGameFinished(rp.ipnet)
	}

	respAttacker := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
	respAttacker.AddPayload(mc.RespEndGame{Winner: winner, IsWinner: winner.PlayerId == session.PlayerId()})
	if err := rp.sessionManager.WriteToSessionConn(session, respAttacker, mc.MessageTypeJSON); err != nil {
		return err
	}

	respDefender := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
	respDefender.AddPayload(mc.RespEndGame{Winner: winner, IsWinner: winner.PlayerId == session.OpponentPlayerId()})
	rp.notifyOpponent(session, respDefender)
	return nil
}

// Failing to reach the opponent never ends the connection of
// the session itself, the opponent's own loop deals with it.
func (rp *RequestProcessor) notifyOpponent(session *mc.Session, msg interface{}) {
	opponentPlayerId := session.OpponentPlayerId()
	if opponentPlayerId == "" {
		return
	}

	msgType := mc.MessageTypeJSON
	if _, ok := msg.([]byte); ok {
		msgType = mc.MessageTypeBytes
	}

	if err := rp.sessionManager.Communicate(opponentPlayerId, msg, msgType); err != nil {
		log.Printf("failed to notify opponent %s: %s\n", opponentPlayerId, err)
	}
}

// A game cannot go on without one of its connections, so the
// game session is dropped and the opponent is told.
func (rp *RequestProcessor) leaveGame(session *mc.Session) {
	gameSessionId := session.GameSessionId()
	if gameSessionId == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	state, err := rp.controller.GameState(ctx, gameSessionId)
	if err == nil && state != mb.GameStateFinished {
		rp.notifyOpponent(session, mc.NewMessage[mc.NoPayload](mc.CodeOtherPlayerDisconnected))
	}
	rp.controller.RemoveSession(ctx, gameSessionId)
}
