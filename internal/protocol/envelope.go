package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownMessage = errors.New("protocol: unknown message type")
	ErrBadPayload     = errors.New("protocol: bad message payload")
)

// Envelope is a decoded message together with the peer that sent it.
type Envelope struct {
	Src string
	Msg Msg
}

type wireEnvelope struct {
	Type    string          `json:"type"`
	Src     string          `json:"src"`
	Payload json.RawMessage `json:"payload"`
}

func Encode(src string, m Msg) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", m.Type(), err)
	}
	return json.Marshal(wireEnvelope{Type: m.Type(), Src: src, Payload: payload})
}

func Decode(data []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	var (
		m   Msg
		err error
	)
	switch w.Type {
	case TypeJoin:
		m, err = decodeAs[Join](w.Payload)
	case TypeHeartbeat:
		m, err = decodeAs[Heartbeat](w.Payload)
	case TypeSetContext:
		m, err = decodeAs[SetContext](w.Payload)
	case TypeSetBlockPacks:
		m, err = decodeAs[SetBlockPacks](w.Payload)
	case TypeSetResourcePacks:
		m, err = decodeAs[SetResourcePacks](w.Payload)
	case TypeInsertChatItem:
		m, err = decodeAs[InsertChatItem](w.Payload)
	case TypeDrawLine:
		m, err = decodeAs[DrawLine](w.Payload)
	case TypeEraseLine:
		m, err = decodeAs[EraseLine](w.Payload)
	case TypeClearTable:
		m, err = decodeAs[ClearTable](w.Payload)
	default:
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownMessage, w.Type)
	}
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %s: %w", ErrBadPayload, w.Type, err)
	}

	return Envelope{Src: w.Src, Msg: m}, nil
}

func decodeAs[T Msg](payload json.RawMessage) (Msg, error) {
	var v T
	if len(payload) == 0 || string(payload) == "null" {
		return v, errors.New("missing payload")
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, err
	}
	return v, nil
}
