package connection

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
	"github.com/saeidalz13/battleship-fleet/internal/idgen"
)

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	CleanupPeriodically(ctx context.Context)

	FindSession(sessionId string) (*Session, error)
	FindPlayerSession(playerId string) (*Session, error)
	TerminateSession(sessionId string)
	ReconnectSession(sessionId string, conn *websocket.Conn) error

	BindPlayer(session *Session, gameSessionId, playerId string)
	LinkOpponents(playerId, opponentPlayerId string)

	Communicate(receiverPlayerId string, msg interface{}, msgType uint8) error
	WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
}

type BattleshipSessionManager struct {
	cleanupInterval time.Duration
	sessions        map[string]*Session

	// player id -> connection session id
	players map[string]string
	mu      sync.RWMutex
}

func NewBattleshipSessionManager(cleanupInterval time.Duration) *BattleshipSessionManager {
	initMapSize := 10

	return &BattleshipSessionManager{
		sessions:        make(map[string]*Session, initMapSize),
		players:         make(map[string]string, initMapSize),
		cleanupInterval: cleanupInterval,
	}
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

func (bsm *BattleshipSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	session := NewSession(idgen.NewConnectionId(), conn)

	bsm.mu.Lock()
	bsm.sessions[session.id] = session
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs || session == nil {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}
	return session, nil
}

func (bsm *BattleshipSessionManager) FindPlayerSession(playerId string) (*Session, error) {
	bsm.mu.RLock()
	sessionId, prs := bsm.players[playerId]
	bsm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrPlayerNotExist(playerId)
	}
	return bsm.FindSession(sessionId)
}

func (bsm *BattleshipSessionManager) TerminateSession(sessionId string) {
	bsm.mu.Lock()
	defer bsm.mu.Unlock()

	session, prs := bsm.sessions[sessionId]
	if !prs {
		return
	}
	if playerId := session.PlayerId(); playerId != "" && bsm.players[playerId] == sessionId {
		delete(bsm.players, playerId)
	}
	delete(bsm.sessions, sessionId)
}

func (bsm *BattleshipSessionManager) ReconnectSession(sessionId string, conn *websocket.Conn) error {
	session, err := bsm.FindSession(sessionId)
	if err != nil {
		return err
	}
	session.reconnectionAfterAbnormalClosure(conn)
	return nil
}

func (bsm *BattleshipSessionManager) BindPlayer(session *Session, gameSessionId, playerId string) {
	session.mu.Lock()
	session.gameSessionId = gameSessionId
	session.playerId = playerId
	session.mu.Unlock()

	bsm.mu.Lock()
	bsm.players[playerId] = session.id
	bsm.mu.Unlock()
}

// Lets both sessions know whom to warn when the connection of
// one of them drops.
func (bsm *BattleshipSessionManager) LinkOpponents(playerId, opponentPlayerId string) {
	for _, pair := range [][2]string{{playerId, opponentPlayerId}, {opponentPlayerId, playerId}} {
		session, err := bsm.FindPlayerSession(pair[0])
		if err != nil {
			continue
		}
		session.mu.Lock()
		session.opponentPlayerId = pair[1]
		session.mu.Unlock()
	}
}

// This method sends the msg to the session of another player
func (bsm *BattleshipSessionManager) Communicate(receiverPlayerId string, msg interface{}, msgType uint8) error {
	receiverSession, err := bsm.FindPlayerSession(receiverPlayerId)
	if err != nil {
		return err
	}
	return bsm.WriteToSessionConn(receiverSession, msg, msgType)
}

// Connections nobody serves anymore that stayed idle for longer
// than the cleanup interval are considered dangling and dropped.
// A waiting player on a served connection is idle but alive.
func (bsm *BattleshipSessionManager) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(bsm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bsm.removeIdleSessions()
		}
	}
}

func (bsm *BattleshipSessionManager) removeIdleSessions() int {
	assumedClosedConns := 10
	toDelete := make([]string, 0, assumedClosedConns)

	bsm.mu.RLock()
	for id, session := range bsm.sessions {
		if session.isServed() {
			continue
		}
		if session.idleFor() > bsm.cleanupInterval {
			toDelete = append(toDelete, id)
		}
	}
	bsm.mu.RUnlock()

	for _, id := range toDelete {
		session, err := bsm.FindSession(id)
		if err != nil {
			continue
		}
		if conn := session.Conn(); conn != nil {
			conn.Close()
		}
		bsm.TerminateSession(id)
		log.Printf("removed idle connection session: %s", id)
	}
	return len(toDelete)
}

// Gives the client of s a grace period to come back after an
// abnormal closure. The opponent is told about the outcome.
func (bsm *BattleshipSessionManager) HandleAbnormalClosureSession(s *Session) error {
	// Without a game there is nothing to come back to
	if s.GameSessionId() == "" || s.PlayerId() == "" {
		return NewConnErr(ConnLoopBreak).AddDesc("session has no game")
	}

	opponentPlayerId := s.OpponentPlayerId()
	if opponentPlayerId == "" {
		return NewConnErr(ConnLoopBreak).AddDesc("session has no opponent")
	}

	otherSession, err := bsm.FindPlayerSession(opponentPlayerId)
	if err != nil {
		return NewConnErr(ConnLoopBreak).AddDesc("other session is nil; invalid session")
	}

	// If the other session connection is faulty too, there is no need to continue
	if err := otherSession.writeToConnWithRetry(NewMessage[NoPayload](CodeOtherPlayerGracePeriod), MessageTypeJSON); err != nil {
		return err
	}

	reconnected := s.reconnectionSignal()
	timer := time.NewTimer(gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		if err := otherSession.writeToConnWithRetry(NewMessage[NoPayload](CodeOtherPlayerDisconnected), MessageTypeJSON); err != nil {
			return err
		}
		log.Printf("session terminated: %s\n", s.id)
		return NewConnErr(ConnLoopBreak).AddDesc("grace period is over for session: " + s.id)

	case <-reconnected:
		if err := otherSession.writeToConnWithRetry(NewMessage[NoPayload](CodeOtherPlayerReconnected), MessageTypeJSON); err != nil {
			return err
		}
		log.Printf("player reconnected, session: %s\n", s.id)
		return nil
	}
}

func (bsm *BattleshipSessionManager) WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error {
	err := session.writeToConnWithRetry(msg, msgType)
	if err == nil {
		return nil
	}

	connErr, ok := err.(ConnErr)
	if !ok {
		panic("this will never happen")
	}

	if connErr.Code() == ConnLoopAbnormalClosureRetry {
		if err := bsm.HandleAbnormalClosureSession(session); err != nil {
			return connErr
		}
		// the client is back on a new connection
		return session.writeToConnWithRetry(msg, msgType)
	}
	return connErr
}

func (bsm *BattleshipSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

	for {
		messageType, payload, err := session.Conn().ReadMessage()
		if err == nil {
			session.touch()
			return messageType, payload, nil
		}

		switch session.handleReadFromConnErr(err, retries) {
		case ConnLoopContinue:
			retries++
			continue

		case ConnLoopAbnormalClosureRetry:
			if err := bsm.HandleAbnormalClosureSession(session); err != nil {
				return -1, []byte{}, err
			}

		default:
			return -1, []byte{}, err
		}
	}
}
