package models

import (
	"errors"
	"testing"
	"time"
)

func pendingRequest() *ConnectionRequest {
	return &ConnectionRequest{
		ID:         1,
		SenderID:   1,
		ReceiverID: 2,
		State:      RequestStatePending,
		Message:    "hi",
	}
}

func TestConnectionRequestAcceptFromPending(t *testing.T) {
	r := pendingRequest()
	now := time.Now()

	if err := r.Accept(now); err != nil {
		t.Fatalf("accept from pending: %v", err)
	}
	if r.State != RequestStateAccepted {
		t.Fatalf("expected accepted, got %s", r.State)
	}
	if r.AcceptedAt == nil || !r.AcceptedAt.Equal(now) {
		t.Fatal("accepted_at not stamped")
	}
}

func TestConnectionRequestRejectFromPending(t *testing.T) {
	r := pendingRequest()
	now := time.Now()

	if err := r.Reject(now); err != nil {
		t.Fatalf("reject from pending: %v", err)
	}
	if r.State != RequestStateRejected {
		t.Fatalf("expected rejected, got %s", r.State)
	}
	if r.RejectedAt == nil {
		t.Fatal("rejected_at not stamped")
	}
}

func TestConnectionRequestBlockFromAccepted(t *testing.T) {
	r := pendingRequest()
	if err := r.Accept(time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := r.Block(); err != nil {
		t.Fatalf("block from accepted: %v", err)
	}
	if r.State != RequestStateBlocked {
		t.Fatalf("expected blocked, got %s", r.State)
	}
}

func TestConnectionRequestTerminalStates(t *testing.T) {
	now := time.Now()

	rejected := pendingRequest()
	if err := rejected.Reject(now); err != nil {
		t.Fatal(err)
	}
	blocked := pendingRequest()
	if err := blocked.Block(); err != nil {
		t.Fatal(err)
	}

	for name, r := range map[string]*ConnectionRequest{"rejected": rejected, "blocked": blocked} {
		if err := r.Accept(now); err == nil {
			t.Fatalf("%s: accept should fail", name)
		}
		if err := r.Reject(now); err == nil {
			t.Fatalf("%s: reject should fail", name)
		}
		if err := r.Block(); err == nil {
			t.Fatalf("%s: block should fail", name)
		}
	}
}

func TestConnectionRequestDoubleAcceptIsIllegal(t *testing.T) {
	r := pendingRequest()
	if err := r.Accept(time.Now()); err != nil {
		t.Fatal(err)
	}

	err := r.Accept(time.Now())
	if err == nil {
		t.Fatal("second accept should fail")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "ILLEGAL_TRANSITION" {
		t.Fatalf("expected illegal transition app error, got %#v", err)
	}
}

func TestConnectionRequestReopenAfterRejection(t *testing.T) {
	r := pendingRequest()
	if err := r.Reject(time.Now()); err != nil {
		t.Fatal(err)
	}

	if err := r.Reopen("second try"); err != nil {
		t.Fatalf("reopen after rejection: %v", err)
	}
	if r.State != RequestStatePending {
		t.Fatalf("expected pending, got %s", r.State)
	}
	if r.Message != "second try" {
		t.Fatalf("message not replaced: %q", r.Message)
	}
	if r.RejectedAt != nil {
		t.Fatal("rejected_at should be cleared on reopen")
	}
}

func TestConnectionRequestReopenFromBlockedFails(t *testing.T) {
	r := pendingRequest()
	if err := r.Block(); err != nil {
		t.Fatal(err)
	}
	if err := r.Reopen("again"); err == nil {
		t.Fatal("reopen from blocked should fail")
	}
}

func TestConnectionRequestSelfRequestRejected(t *testing.T) {
	r := &ConnectionRequest{SenderID: 7, ReceiverID: 7}
	err := r.BeforeSave(nil)
	if err == nil {
		t.Fatal("expected validation error for self request")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestConnectionRequestCounterpart(t *testing.T) {
	r := pendingRequest()
	if got := r.CounterpartOf(1); got != 2 {
		t.Fatalf("counterpart of sender: got %d", got)
	}
	if got := r.CounterpartOf(2); got != 1 {
		t.Fatalf("counterpart of receiver: got %d", got)
	}
	if !r.Involves(1) || !r.Involves(2) || r.Involves(3) {
		t.Fatal("involves mismatch")
	}
}
