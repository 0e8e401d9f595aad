package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"

	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
	mc "github.com/saeidalz13/battleship-fleet/models/connection"
)

func TestHandlePlaceShipDirection(t *testing.T) {
	tests := []struct {
		name              string
		direction         string
		expectedDirection string
		expectedCode      *uint8
	}{
		{name: "upper case", direction: "VERTICAL", expectedDirection: "VERTICAL"},
		{name: "mixed case", direction: "Vertical", expectedDirection: "VERTICAL"},
		{name: "lower case", direction: "horizontal", expectedDirection: "HORIZONTAL"},
		{name: "padded", direction: " vertical ", expectedDirection: "VERTICAL"},
		{name: "empty", direction: "", expectedDirection: "HORIZONTAL"},
		{name: "unknown", direction: "diagonal", expectedCode: codeOf(cerr.CodeInvalidInput)},
	}

	validate := validator.New()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()
			gc := newTestController()
			sessionId, _ := gc.InitGameSession(ctx, mb.RulesetClassic)
			host, _ := gc.CreatePlayerInSession(ctx, sessionId, "host")
			ships, err := gc.PreparedShips(ctx, sessionId, host.PlayerId)
			if err != nil {
				t.Fatal(err)
			}

			msg := mc.NewMessage[mc.ReqPlaceShip](mc.CodePlaceShip)
			msg.AddPayload(mc.ReqPlaceShip{ShipId: ships[0].ShipId, X: 2, Y: 2, Direction: test.direction})
			payload, err := json.Marshal(msg)
			if err != nil {
				t.Fatal(err)
			}

			resp := NewRequest(validate, payload).HandlePlaceShip(ctx, gc, sessionId, host.PlayerId)
			if test.expectedCode != nil {
				if resp.Error == nil || resp.Error.ErrorCode == nil || *resp.Error.ErrorCode != *test.expectedCode {
					t.Fatalf("expected code: %d\t got: %+v", *test.expectedCode, resp.Error)
				}
				return
			}

			if resp.Error != nil {
				t.Fatalf("expected: %v\t got: %+v", nil, resp.Error)
			}
			if resp.Payload.Direction != test.expectedDirection {
				t.Fatalf("expected: %s\t got: %s", test.expectedDirection, resp.Payload.Direction)
			}
			if resp.Payload.ShipsLeft != len(ships)-1 {
				t.Fatalf("expected: %d\t got: %d", len(ships)-1, resp.Payload.ShipsLeft)
			}
		})
	}
}
