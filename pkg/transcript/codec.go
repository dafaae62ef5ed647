package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned for any structural wire violation: a
// missing header/payload key, extra top-level keys, or an unknown
// msg_id. Fatal for the connection per spec.md §7.
var ErrMalformed = errors.New("transcript: malformed message")

// Header carries the routing metadata for every wire message.
type Header struct {
	Sender *int `json:"sender"`
	MsgID  int  `json:"msg_id"`
}

// Envelope is the full wire shape: {"header": {...}, "payload": {...}}.
type Envelope struct {
	Header  Header          `json:"header"`
	Payload json.RawMessage `json:"payload"`
}

// strictUnmarshal decodes data into v, rejecting any field not present
// in v's JSON tags.
func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after message", ErrMalformed)
	}
	return nil
}

// Encode wraps a typed payload in the standard envelope and marshals
// it to a single JSON frame, ready to hand to a transport.Channel.
func Encode(sender *int, m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("transcript: encode payload: %w", err)
	}
	env := Envelope{
		Header:  Header{Sender: sender, MsgID: int(m.MsgID())},
		Payload: payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("transcript: encode envelope: %w", err)
	}
	return data, nil
}

// Decode parses a single wire frame, enforcing the strict
// {header:{sender,msg_id}, payload:{...}} shape, and dispatches on
// msg_id to produce the typed Message.
func Decode(data []byte) (sender *int, msg Message, err error) {
	var env Envelope
	if err := strictUnmarshal(data, &env); err != nil {
		return nil, nil, err
	}
	var raw struct {
		Header map[string]json.RawMessage `json:"header"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for _, key := range []string{"sender", "msg_id"} {
		if _, ok := raw.Header[key]; !ok {
			return nil, nil, fmt.Errorf("%w: header missing %q", ErrMalformed, key)
		}
	}
	if env.Payload == nil {
		return nil, nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}

	msg, err = decodePayload(MsgID(env.Header.MsgID), env.Payload)
	if err != nil {
		return nil, nil, err
	}
	return env.Header.Sender, msg, nil
}

func decodePayload(id MsgID, raw json.RawMessage) (Message, error) {
	switch id {
	case UserLoginID:
		var m UserLogin
		return m, strictUnmarshal(raw, &m)
	case SetUserIDID:
		var m SetUserID
		return m, strictUnmarshal(raw, &m)
	case ZKPForPubKeyID:
		var m ZKPForPubKey
		return m, strictUnmarshal(raw, &m)
	case ZKPForPubKeyAccID:
		var m ZKPForPubKeyAcc
		return m, strictUnmarshal(raw, &m)
	case SendQuestionID:
		var m SendQuestion
		return m, strictUnmarshal(raw, &m)
	case MaskedBallotID:
		var m MaskedBallotMsg
		return m, strictUnmarshal(raw, &m)
	case BallotChallengeID:
		var m BallotChallenge
		return m, strictUnmarshal(raw, &m)
	case BallotZKPID:
		var m BallotZKPMsg
		return m, strictUnmarshal(raw, &m)
	case ZKPForBallotAccID:
		var m ZKPForBallotAcc
		return m, strictUnmarshal(raw, &m)
	case FinalBallotsID:
		var m FinalBallots
		return m, strictUnmarshal(raw, &m)
	default:
		return nil, fmt.Errorf("%w: unknown msg_id %d", ErrMalformed, int(id))
	}
}
