package connection

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID
	CodeCreateGame
	CodeJoinGame
	CodeAvailableShips
	CodePlaceShip
	CodeRemoveShip
	CodeReady
	CodeStartGame
	CodeAttack
	CodeEndGame
	CodeBoard
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent

	// Sent to the host once somebody joins its game
	CodeOtherPlayerJoined

	// Sent to the opponent when a player finished placing ships
	CodeOtherPlayerReady

	CodeOtherPlayerDisconnected
	CodeOtherPlayerReconnected
	CodeOtherPlayerGracePeriod

	// Players can send template texts and emojis to each other
	CodePlayerInteraction
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}
