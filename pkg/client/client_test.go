package client

import (
	"errors"
	"testing"

	"github.com/openvote/ovn/pkg/curve"
	"github.com/openvote/ovn/pkg/transcript"
	"github.com/openvote/ovn/pkg/transport"
	"github.com/openvote/ovn/pkg/zkp"
)

var errUserIDMismatch = errors.New("assigned user_id did not match")

func TestRunRejectsInvalidVote(t *testing.T) {
	a, b := transport.NewPipePair()
	defer a.Close()
	defer b.Close()

	_, err := Run(Config{Channel: a, Vote: 2})
	if err != zkp.ErrInvalidVote {
		t.Fatalf("got %v, want ErrInvalidVote", err)
	}
}

func TestLoginReturnsAssignedUserID(t *testing.T) {
	a, b := transport.NewPipePair()
	defer a.Close()
	defer b.Close()

	done := make(chan error, 1)
	go func() {
		pk := curve.Generator()
		id, err := login(a, pk)
		if err == nil && id != 4 {
			err = errUserIDMismatch
		}
		done <- err
	}()

	_, msg, err := recv(b)
	if err != nil {
		t.Fatalf("recv login: %v", err)
	}
	if _, ok := msg.(transcript.UserLogin); !ok {
		t.Fatalf("expected USER_LOGIN, got %T", msg)
	}
	if err := send(b, nil, transcript.SetUserID{UserID: 4}); err != nil {
		t.Fatalf("send SET_USER_ID: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestProveKeyReportsRejection(t *testing.T) {
	a, b := transport.NewPipePair()
	defer a.Close()
	defer b.Close()

	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- proveKey(a, x, 0) }()

	if _, _, err := recv(b); err != nil {
		t.Fatalf("recv key proof: %v", err)
	}
	if err := send(b, nil, transcript.ZKPForPubKeyAcc{Acceptance: false}); err != nil {
		t.Fatalf("send acceptance: %v", err)
	}

	if err := <-done; err != ErrKeyProofRejected {
		t.Fatalf("got %v, want ErrKeyProofRejected", err)
	}
}
