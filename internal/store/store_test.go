package store

import (
	"fmt"
	"testing"

	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
)

type counterIdGenerator struct {
	n int
}

func (c *counterIdGenerator) GenerateId() string {
	c.n++
	return fmt.Sprintf("id-%d", c.n)
}

func testSnapshot(t *testing.T, sessionId string) mb.Snapshot {
	t.Helper()

	game := mb.NewGame(sessionId, mb.ClassicRuleset{}, &counterIdGenerator{})
	if _, err := game.AddPlayer("host", "Host"); err != nil {
		t.Fatal(err)
	}
	if _, err := game.AddPlayer("join", "Join"); err != nil {
		t.Fatal(err)
	}

	ships, err := game.AvailableShips("host")
	if err != nil {
		t.Fatal(err)
	}
	if err := game.AddShip("host", mb.NewCoordinates(3, 3), ships[len(ships)-1]); err != nil {
		t.Fatal(err)
	}
	return game.Snapshot()
}
