package connection

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type PlayerDto struct {
	PlayerName string `json:"player_name"`
	PlayerId   string `json:"player_id"`
	SessionId  string `json:"session_id"`
	IsReady    bool   `json:"is_ready"`
}

type ShipDto struct {
	ShipId    string `json:"ship_id"`
	ShipSize  int    `json:"ship_size"`
	Direction string `json:"direction"`
}

// FieldCell is a board cell together with its position.
// IsNotAvailable marks cells where no ship may start since
// a ship is on or next to them.
type FieldCell struct {
	ShipId         string `json:"ship_id,omitempty"`
	HasShip        bool   `json:"has_ship"`
	HasShot        bool   `json:"has_shot"`
	Row            int    `json:"row"`
	Col            int    `json:"col"`
	IsNotAvailable bool   `json:"is_not_available"`
}

type ShotResult struct {
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Hit          bool   `json:"hit"`
	IsShipSunk   bool   `json:"is_ship_sunk"`
	IsFinished   bool   `json:"is_finished"`
	NextPlayerId string `json:"next_player_id"`
}

type RespCreateGame struct {
	GameSessionId string    `json:"game_session_id"`
	Ruleset       string    `json:"ruleset"`
	Player        PlayerDto `json:"player"`
}

type RespJoinGame struct {
	GameSessionId string    `json:"game_session_id"`
	Player        PlayerDto `json:"player"`
	Opponent      PlayerDto `json:"opponent"`
}

type RespOtherPlayerJoined struct {
	Opponent PlayerDto `json:"opponent"`
}

type RespAvailableShips struct {
	Ships []ShipDto `json:"ships"`
}

type RespPlaceShip struct {
	ShipId    string `json:"ship_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Direction string `json:"direction"`
	ShipsLeft int    `json:"ships_left"`
}

type RespRemoveShip struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Removed bool `json:"removed"`
}

type RespReady struct {
	IsReady bool `json:"is_ready"`
}

type RespStartGame struct {
	ActivePlayerId string `json:"active_player_id"`
}

type RespBoard struct {
	Own       [][]FieldCell `json:"own"`
	Opponent  [][]FieldCell `json:"opponent,omitempty"`
	CellsLeft int           `json:"cells_left"`
}

type RespEndGame struct {
	Winner   PlayerDto `json:"winner"`
	IsWinner bool      `json:"is_winner"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
	ErrorCode    *uint8 `json:"error_code,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
