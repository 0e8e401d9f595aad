package connection

import (
	"testing"
	"time"

	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
)

func TestSessionManagerPlayers(t *testing.T) {
	bsm := NewBattleshipSessionManager(time.Minute)

	host := bsm.GenerateNewSession(nil)
	join := bsm.GenerateNewSession(nil)
	if host.Id() == join.Id() {
		t.Fatal("sessions must not share ids")
	}

	found, err := bsm.FindSession(host.Id())
	if err != nil || found != host {
		t.Fatalf("expected: %s\t got: %v %v", host.Id(), found, err)
	}

	if _, err := bsm.FindPlayerSession("host-player"); !cerr.HasCode(err, cerr.CodePlayerNotFound) {
		t.Fatalf("expected player not found\t got: %v", err)
	}

	bsm.BindPlayer(host, "game-1", "host-player")
	bsm.BindPlayer(join, "game-1", "join-player")
	bsm.LinkOpponents("join-player", "host-player")

	tests := []struct {
		name             string
		playerId         string
		expectedSession  *Session
		expectedOpponent string
	}{
		{name: "host", playerId: "host-player", expectedSession: host, expectedOpponent: "join-player"},
		{name: "join", playerId: "join-player", expectedSession: join, expectedOpponent: "host-player"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			session, err := bsm.FindPlayerSession(test.playerId)
			if err != nil {
				t.Fatal(err)
			}
			if session != test.expectedSession {
				t.Fatalf("expected: %s\t got: %s", test.expectedSession.Id(), session.Id())
			}
			if session.GameSessionId() != "game-1" {
				t.Fatalf("expected: %s\t got: %s", "game-1", session.GameSessionId())
			}
			if session.OpponentPlayerId() != test.expectedOpponent {
				t.Fatalf("expected: %s\t got: %s", test.expectedOpponent, session.OpponentPlayerId())
			}
		})
	}

	bsm.TerminateSession(host.Id())
	if _, err := bsm.FindSession(host.Id()); !cerr.HasCode(err, cerr.CodeSessionNotFound) {
		t.Fatalf("expected session not found\t got: %v", err)
	}
	if _, err := bsm.FindPlayerSession("host-player"); err == nil {
		t.Fatal("player of a terminated session should be gone")
	}

	// messages to a player without a connection fail
	if err := bsm.Communicate("host-player", NewMessage[NoPayload](CodeOtherPlayerJoined), MessageTypeJSON); err == nil {
		t.Fatal("expected error")
	}
}

func TestSessionManagerRemoveIdleSessions(t *testing.T) {
	bsm := NewBattleshipSessionManager(time.Minute * 20)

	idle := bsm.GenerateNewSession(nil)
	active := bsm.GenerateNewSession(nil)
	idle.lastActive = time.Now().Add(-time.Minute * 30)
	bsm.BindPlayer(idle, "game-1", "idle-player")

	if removed := bsm.removeIdleSessions(); removed != 1 {
		t.Fatalf("expected: %d\t got: %d", 1, removed)
	}
	if _, err := bsm.FindSession(idle.Id()); err == nil {
		t.Fatal("idle session should be removed")
	}
	if _, err := bsm.FindPlayerSession("idle-player"); err == nil {
		t.Fatal("player of idle session should be removed")
	}
	if _, err := bsm.FindSession(active.Id()); err != nil {
		t.Fatal(err)
	}
}

func TestSessionManagerKeepsServedSessions(t *testing.T) {
	bsm := NewBattleshipSessionManager(time.Minute * 20)

	host := bsm.GenerateNewSession(nil)
	join := bsm.GenerateNewSession(nil)
	for _, session := range []*Session{host, join} {
		session.StartServing()
		session.lastActive = time.Now().Add(-time.Minute * 30)
	}
	bsm.BindPlayer(host, "game-1", "host-player")
	bsm.BindPlayer(join, "game-1", "join-player")
	bsm.LinkOpponents("join-player", "host-player")

	if removed := bsm.removeIdleSessions(); removed != 0 {
		t.Fatalf("expected: %d\t got: %d", 0, removed)
	}
	session, err := bsm.FindPlayerSession("host-player")
	if err != nil {
		t.Fatal(err)
	}
	if session.OpponentPlayerId() != "join-player" {
		t.Fatalf("expected: %s\t got: %s", "join-player", session.OpponentPlayerId())
	}

	// once its loop is gone the session is dangling
	host.StopServing()
	if removed := bsm.removeIdleSessions(); removed != 1 {
		t.Fatalf("expected: %d\t got: %d", 1, removed)
	}
	if _, err := bsm.FindPlayerSession("host-player"); err == nil {
		t.Fatal("player of dangling session should be removed")
	}
	if _, err := bsm.FindPlayerSession("join-player"); err != nil {
		t.Fatal(err)
	}
}

func TestHandleAbnormalClosureWithoutGame(t *testing.T) {
	bsm := NewBattleshipSessionManager(time.Minute)
	session := bsm.GenerateNewSession(nil)

	err := bsm.HandleAbnormalClosureSession(session)
	connErr, ok := err.(ConnErr)
	if !ok || connErr.Code() != ConnLoopBreak {
		t.Fatalf("expected loop break\t got: %v", err)
	}
}

func TestMessageAddGameError(t *testing.T) {
	msg := NewMessage[ShotResult](CodeAttack)
	msg.AddGameError(cerr.ErrNotTurnForAttacker("p-1"), "attack failed")

	if msg.Error == nil || msg.Error.ErrorCode == nil {
		t.Fatal("expected error code in response")
	}
	if *msg.Error.ErrorCode != cerr.CodeNotTurnForAttacker {
		t.Fatalf("expected: %d\t got: %d", cerr.CodeNotTurnForAttacker, *msg.Error.ErrorCode)
	}
}
