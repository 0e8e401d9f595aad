package connection

type ReqCreateGame struct {
	Ruleset    string `json:"ruleset" validate:"omitempty,max=64"`
	PlayerName string `json:"player_name" validate:"required,max=32"`
}

type ReqJoinGame struct {
	GameSessionId string `json:"game_session_id" validate:"required"`
	PlayerName    string `json:"player_name" validate:"required,max=32"`
}

type ReqPlaceShip struct {
	ShipId    string `json:"ship_id" validate:"required"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Direction string `json:"direction" validate:"max=16"`
}

type ReqRemoveShip struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type ReqAttack struct {
	X int `json:"x"`
	Y int `json:"y"`
}
