package transcript

import "math/big"

// Message is implemented by every payload type in the taxonomy.
type Message interface {
	MsgID() MsgID
}

// UserLogin is C->S (msg_id 2).
type UserLogin struct {
	PublicKey WirePoint `json:"public_key"`
}

func (UserLogin) MsgID() MsgID { return UserLoginID }

// SetUserID is S->C (msg_id 3).
type SetUserID struct {
	UserID int `json:"user_id"`
}

func (SetUserID) MsgID() MsgID { return SetUserIDID }

// ZKPForPubKey is C->S (msg_id 4): a Schnorr proof (R, s).
type ZKPForPubKey struct {
	Signature WirePoint `json:"signature"`
	Exponent  *big.Int  `json:"exponent"`
}

func (ZKPForPubKey) MsgID() MsgID { return ZKPForPubKeyID }

// ZKPForPubKeyAcc is S->C (msg_id 5).
type ZKPForPubKeyAcc struct {
	Acceptance bool `json:"acceptance"`
}

func (ZKPForPubKeyAcc) MsgID() MsgID { return ZKPForPubKeyAccID }

// SendQuestion is S->C (msg_id 6).
type SendQuestion struct {
	TheQuestion string      `json:"the_question"`
	PublicKeys  []WirePoint `json:"public_keys"`
}

func (SendQuestion) MsgID() MsgID { return SendQuestionID }

// BallotProofWire is the first-phase ballot ZKP commitment on the wire.
type BallotProofWire struct {
	X  WirePoint `json:"x"`
	Y  WirePoint `json:"y"`
	A1 WirePoint `json:"a1"`
	A2 WirePoint `json:"a2"`
	B1 WirePoint `json:"b1"`
	B2 WirePoint `json:"b2"`
}

// MaskedBallotMsg is C->S (msg_id 7).
type MaskedBallotMsg struct {
	MaskedBallot WirePoint       `json:"masked_ballot"`
	Proof        BallotProofWire `json:"proof"`
}

func (MaskedBallotMsg) MsgID() MsgID { return MaskedBallotID }

// BallotChallenge is S->C (msg_id 8).
type BallotChallenge struct {
	Challenge *big.Int `json:"challenge"`
}

func (BallotChallenge) MsgID() MsgID { return BallotChallengeID }

// BallotResponseWire is the second-phase ballot ZKP response on the wire.
type BallotResponseWire struct {
	D1 *big.Int `json:"d1"`
	D2 *big.Int `json:"d2"`
	R1 *big.Int `json:"r1"`
	R2 *big.Int `json:"r2"`
}

// BallotZKPMsg is C->S (msg_id 9).
type BallotZKPMsg struct {
	Proof BallotResponseWire `json:"proof"`
}

func (BallotZKPMsg) MsgID() MsgID { return BallotZKPID }

// ZKPForBallotAcc is S->C (msg_id 10).
type ZKPForBallotAcc struct {
	Acceptance bool `json:"acceptance"`
}

func (ZKPForBallotAcc) MsgID() MsgID { return ZKPForBallotAccID }

// FinalBallots is S->C (msg_id 11).
type FinalBallots struct {
	Ballots []WirePoint `json:"ballots"`
}

func (FinalBallots) MsgID() MsgID { return FinalBallotsID }
