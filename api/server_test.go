package api

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"

	"github.com/saeidalz13/battleship-fleet/db/sqlc"
	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
	"github.com/saeidalz13/battleship-fleet/internal/store"
	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
	mc "github.com/saeidalz13/battleship-fleet/models/connection"
)

func newTestServer(t *testing.T, opts ...ProcessorOption) *httptest.Server {
	t.Helper()
	return newTestServerWithSessions(t, mc.NewBattleshipSessionManager(time.Minute), opts...)
}

func newTestServerWithSessions(t *testing.T, sessionManager mc.SessionManager, opts ...ProcessorOption) *httptest.Server {
	t.Helper()

	controller := NewGameController(store.NewMemoryStore(time.Minute), &sequenceIdGenerator{}, mb.DefaultRulesets())
	processor := NewRequestProcessor(sessionManager, controller, opts...)
	server := NewServer(processor, WithStage("dev"))

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/battleship" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send[T any](t *testing.T, conn *websocket.Conn, code uint8, payload T) {
	t.Helper()

	msg := mc.NewMessage[T](code)
	msg.AddPayload(payload)
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatal(err)
	}
}

func receive[T any](t *testing.T, conn *websocket.Conn, expectedCode uint8) mc.Message[T] {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(time.Second * 5)); err != nil {
		t.Fatal(err)
	}

	var msg mc.Message[T]
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Code != expectedCode {
		t.Fatalf("expected code: %d\t got: %d (%+v)", expectedCode, msg.Code, msg.Error)
	}
	return msg
}

func connect(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	conn := dial(t, ts, "")
	msg := receive[mc.RespSessionId](t, conn, mc.CodeSessionID)
	if msg.Payload.SessionID == "" {
		t.Fatal("expected a connection session id")
	}
	return conn
}

func placeFleetOverWs(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	send(t, conn, mc.CodeAvailableShips, mc.NoPayload(false))
	ships := receive[mc.RespAvailableShips](t, conn, mc.CodeAvailableShips).Payload.Ships
	if len(ships) != 10 {
		t.Fatalf("expected: %d\t got: %d", 10, len(ships))
	}

	used := make(map[int]int)
	for i, ship := range ships {
		origin := classicLayout[ship.ShipSize][used[ship.ShipSize]]
		used[ship.ShipSize]++

		send(t, conn, mc.CodePlaceShip, mc.ReqPlaceShip{ShipId: ship.ShipId, X: origin.X, Y: origin.Y, Direction: "HORIZONTAL"})
		placed := receive[mc.RespPlaceShip](t, conn, mc.CodePlaceShip)
		if placed.Error != nil {
			t.Fatalf("placing ship %s: %+v", ship.ShipId, placed.Error)
		}
		if placed.Payload.ShipsLeft != len(ships)-i-1 {
			t.Fatalf("expected: %d\t got: %d", len(ships)-i-1, placed.Payload.ShipsLeft)
		}
	}
}

func TestWsRejectsRequestsWithoutGame(t *testing.T) {
	ts := newTestServer(t)
	conn := connect(t, ts)

	send(t, conn, mc.CodeBoard, mc.NoPayload(false))
	if msg := receive[mc.NoPayload](t, conn, mc.CodeBoard); msg.Error == nil {
		t.Fatal("expected error for a connection without game")
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	receive[mc.NoPayload](t, conn, mc.CodeSignalAbsent)

	send(t, conn, 200, mc.NoPayload(false))
	receive[mc.NoPayload](t, conn, mc.CodeInvalidSignal)

	send(t, conn, mc.CodeCreateGame, mc.ReqCreateGame{})
	if msg := receive[mc.RespCreateGame](t, conn, mc.CodeCreateGame); msg.Error == nil {
		t.Fatal("expected validation error for a missing player name")
	}

	send(t, conn, mc.CodeJoinGame, mc.ReqJoinGame{GameSessionId: "missing", PlayerName: "join"})
	msg := receive[mc.RespJoinGame](t, conn, mc.CodeJoinGame)
	if msg.Error == nil || msg.Error.ErrorCode == nil || *msg.Error.ErrorCode != cerr.CodeSessionNotFound {
		t.Fatalf("expected session not found\t got: %+v", msg.Error)
	}
}

func TestWsReconnectWithUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "?"+URLQuerySessionIDKeyword+"=bogus")

	if msg := receive[mc.NoPayload](t, conn, mc.CodeReceivedInvalidSessionID); msg.Error == nil {
		t.Fatal("expected error for an unknown session id")
	}
}

func TestWsFullGame(t *testing.T) {
	ts := newTestServer(t)
	host := connect(t, ts)
	join := connect(t, ts)

	send(t, host, mc.CodeCreateGame, mc.ReqCreateGame{PlayerName: "host"})
	created := receive[mc.RespCreateGame](t, host, mc.CodeCreateGame)
	if created.Error != nil {
		t.Fatalf("create game: %+v", created.Error)
	}
	if created.Payload.Ruleset != mb.RulesetClassic {
		t.Fatalf("expected: %s\t got: %s", mb.RulesetClassic, created.Payload.Ruleset)
	}
	hostId := created.Payload.Player.PlayerId

	send(t, join, mc.CodeJoinGame, mc.ReqJoinGame{GameSessionId: created.Payload.GameSessionId, PlayerName: "join"})
	joined := receive[mc.RespJoinGame](t, join, mc.CodeJoinGame)
	if joined.Error != nil {
		t.Fatalf("join game: %+v", joined.Error)
	}
	if joined.Payload.Opponent.PlayerId != hostId {
		t.Fatalf("expected: %s\t got: %s", hostId, joined.Payload.Opponent.PlayerId)
	}
	joinId := joined.Payload.Player.PlayerId

	otherJoined := receive[mc.RespOtherPlayerJoined](t, host, mc.CodeOtherPlayerJoined)
	if otherJoined.Payload.Opponent.PlayerId != joinId {
		t.Fatalf("expected: %s\t got: %s", joinId, otherJoined.Payload.Opponent.PlayerId)
	}

	placeFleetOverWs(t, host)
	placeFleetOverWs(t, join)

	send(t, host, mc.CodeReady, mc.NoPayload(false))
	if ready := receive[mc.RespReady](t, host, mc.CodeReady); !ready.Payload.IsReady {
		t.Fatal("expected host to be ready")
	}
	receive[mc.NoPayload](t, join, mc.CodeOtherPlayerReady)

	send(t, join, mc.CodeReady, mc.NoPayload(false))
	receive[mc.RespReady](t, join, mc.CodeReady)
	receive[mc.NoPayload](t, host, mc.CodeOtherPlayerReady)

	for _, conn := range []*websocket.Conn{join, host} {
		start := receive[mc.RespStartGame](t, conn, mc.CodeStartGame)
		if start.Payload.ActivePlayerId != hostId {
			t.Fatalf("expected: %s\t got: %s", hostId, start.Payload.ActivePlayerId)
		}
	}

	send(t, join, mc.CodeAttack, mc.ReqAttack{X: 0, Y: 0})
	wrongTurn := receive[mc.ShotResult](t, join, mc.CodeAttack)
	if wrongTurn.Error == nil || wrongTurn.Error.ErrorCode == nil || *wrongTurn.Error.ErrorCode != cerr.CodeNotTurnForAttacker {
		t.Fatalf("expected not turn for attacker\t got: %+v", wrongTurn.Error)
	}

	send(t, host, mc.CodeBoard, mc.NoPayload(false))
	board := receive[mc.RespBoard](t, host, mc.CodeBoard).Payload
	if board.CellsLeft != 100 || len(board.Own) != mb.GridSize || len(board.Opponent) != mb.GridSize {
		t.Fatalf("unexpected board: cells left %d, rows %d/%d", board.CellsLeft, len(board.Own), len(board.Opponent))
	}
	if board.Opponent[0][0].HasShip {
		t.Fatal("opponent ships must stay hidden")
	}

	shots := 0
	for size, origins := range classicLayout {
		for _, origin := range origins {
			for y := origin.Y; y < origin.Y+size; y++ {
				send(t, host, mc.CodeAttack, mc.ReqAttack{X: origin.X, Y: y})
				shots++

				result := receive[mc.ShotResult](t, host, mc.CodeAttack)
				if result.Error != nil || !result.Payload.Hit || result.Payload.NextPlayerId != hostId {
					t.Fatalf("expected a hit at x: %d y: %d\t got: %+v %+v", origin.X, y, result.Payload, result.Error)
				}
				if seen := receive[mc.ShotResult](t, join, mc.CodeAttack); seen.Payload != result.Payload {
					t.Fatalf("expected: %+v\t got: %+v", result.Payload, seen.Payload)
				}
			}
		}
	}
	if shots != 20 {
		t.Fatalf("expected: %d\t got: %d", 20, shots)
	}

	hostEnd := receive[mc.RespEndGame](t, host, mc.CodeEndGame)
	if !hostEnd.Payload.IsWinner || hostEnd.Payload.Winner.PlayerId != hostId {
		t.Fatalf("expected host to win\t got: %+v", hostEnd.Payload)
	}
	joinEnd := receive[mc.RespEndGame](t, join, mc.CodeEndGame)
	if joinEnd.Payload.IsWinner || joinEnd.Payload.Winner.PlayerId != hostId {
		t.Fatalf("expected join to lose\t got: %+v", joinEnd.Payload)
	}
}

func TestWsRecordsCreatedGame(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	dbManager := sqlc.NewDbManager(db)
	ts := newTestServer(t, WithAnalytics(dbManager.Analytics), WithDefaultRuleset(mb.RulesetCustom))
	conn := connect(t, ts)

	send(t, conn, mc.CodeCreateGame, mc.ReqCreateGame{PlayerName: "host"})
	created := receive[mc.RespCreateGame](t, conn, mc.CodeCreateGame)
	if created.Error != nil {
		t.Fatalf("create game: %+v", created.Error)
	}
	if created.Payload.Ruleset != mb.RulesetCustom {
		t.Fatalf("expected: %s\t got: %s", mb.RulesetCustom, created.Payload.Ruleset)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestWsIdleWaitingPlayersStayConnected(t *testing.T) {
	sessionManager := mc.NewBattleshipSessionManager(time.Millisecond * 50)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go sessionManager.CleanupPeriodically(ctx)

	ts := newTestServerWithSessions(t, sessionManager)
	host := connect(t, ts)
	join := connect(t, ts)

	send(t, host, mc.CodeCreateGame, mc.ReqCreateGame{PlayerName: "host"})
	created := receive[mc.RespCreateGame](t, host, mc.CodeCreateGame)
	send(t, join, mc.CodeJoinGame, mc.ReqJoinGame{GameSessionId: created.Payload.GameSessionId, PlayerName: "join"})
	receive[mc.RespJoinGame](t, join, mc.CodeJoinGame)
	receive[mc.RespOtherPlayerJoined](t, host, mc.CodeOtherPlayerJoined)

	// several cleanup rounds while both players think
	time.Sleep(time.Millisecond * 300)

	send(t, host, mc.CodeAvailableShips, mc.NoPayload(false))
	if ships := receive[mc.RespAvailableShips](t, host, mc.CodeAvailableShips); ships.Error != nil {
		t.Fatalf("expected: %v\t got: %+v", nil, ships.Error)
	}

	placeFleetOverWs(t, join)
	send(t, join, mc.CodeReady, mc.NoPayload(false))
	receive[mc.RespReady](t, join, mc.CodeReady)
	receive[mc.NoPayload](t, host, mc.CodeOtherPlayerReady)
}

func TestWsDropsOversizedMessages(t *testing.T) {
	ts := newTestServer(t)
	conn := connect(t, ts)

	payload := `{"code":` + strings.Repeat(" ", int(maxMessageSize)*2) + `1}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatal(err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(time.Second * 5)); err != nil {
		t.Fatal(err)
	}
	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatal("expected the connection to be closed")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Fatalf("expected: %s\t got: %v", "closed connection", err)
	}
}
