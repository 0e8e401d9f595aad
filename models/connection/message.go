package connection

import (
	"errors"

	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
)

type NoPayload bool

type Message[T any] struct {
	Code    uint8    `json:"code"`
	Payload T        `json:"payload,omitempty"`
	Error   *RespErr `json:"error,omitempty"`
}

func NewMessage[T any](code uint8) Message[T] {
	return Message[T]{Code: code}
}

func (m *Message[T]) AddPayload(payload T) {
	m.Payload = payload
}

func (m *Message[T]) AddError(errorDetails, message string) {
	m.Error = NewRespErr(errorDetails, message)
}

// Same as AddError, but game failures also expose their
// code so clients can tell them apart.
func (m *Message[T]) AddGameError(err error, message string) {
	m.Error = NewRespErr(err.Error(), message)

	var gameErr cerr.GameErr
	if errors.As(err, &gameErr) {
		code := gameErr.Code()
		m.Error.ErrorCode = &code
	}
}
