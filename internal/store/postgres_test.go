package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/saeidalz13/battleship-fleet/db/sqlc"
	"github.com/sqlc-dev/pqtype"
)

func newTestPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return NewPostgresStore(sqlc.New(db), time.Minute*20), mock
}

func TestPostgresStoreSave(t *testing.T) {
	ps, mock := newTestPostgresStore(t)
	snap := testSnapshot(t, "session-1")

	encoded, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectExec(`INSERT INTO game_sessions \(session_id, snapshot, updated_at\)`).
		WithArgs("session-1", pqtype.NullRawMessage{RawMessage: encoded, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO game_sessions`).
		WithArgs("session-2", sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	if !ps.Save(context.Background(), "session-1", snap) {
		t.Fatal("expected save to succeed")
	}
	if ps.Save(context.Background(), "session-2", snap) {
		t.Fatal("expected save to fail")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestPostgresStoreLoad(t *testing.T) {
	snap := testSnapshot(t, "session-1")
	encoded, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		expect     func(mock sqlmock.Sqlmock)
		expectedOk bool
	}{
		{
			name: "stored session",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT snapshot FROM game_sessions WHERE session_id = \$1`).
					WithArgs("session-1").
					WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow(encoded))
			},
			expectedOk: true,
		},
		{
			name: "unknown session",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT snapshot FROM game_sessions`).
					WithArgs("session-1").
					WillReturnError(sql.ErrNoRows)
			},
		},
		{
			name: "null snapshot",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT snapshot FROM game_sessions`).
					WithArgs("session-1").
					WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow(nil))
			},
		},
		{
			name: "broken json",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT snapshot FROM game_sessions`).
					WithArgs("session-1").
					WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow([]byte(`{"players": 3`)))
			},
		},
		{
			name: "database down",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT snapshot FROM game_sessions`).
					WithArgs("session-1").
					WillReturnError(errors.New("connection refused"))
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ps, mock := newTestPostgresStore(t)
			test.expect(mock)

			loaded, ok := ps.Load(context.Background(), "session-1")
			if ok != test.expectedOk {
				t.Fatalf("expected: %v\t got: %v", test.expectedOk, ok)
			}
			if ok && !reflect.DeepEqual(snap, loaded) {
				t.Fatalf("expected: %+v\t got: %+v", snap, loaded)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations were not met: %v", err)
			}
		})
	}
}

func TestPostgresStoreRemove(t *testing.T) {
	ps, mock := newTestPostgresStore(t)

	mock.ExpectExec(`DELETE FROM game_sessions WHERE session_id = \$1`).
		WithArgs("session-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM game_sessions WHERE session_id = \$1`).
		WithArgs("session-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if !ps.Remove(context.Background(), "session-1") {
		t.Fatal("expected remove to succeed")
	}
	if ps.Remove(context.Background(), "session-1") {
		t.Fatal("expected second remove to report absence")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestPostgresStoreRemoveStale(t *testing.T) {
	ps, mock := newTestPostgresStore(t)

	mock.ExpectExec(`DELETE FROM game_sessions WHERE updated_at < \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	ps.removeStale(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
