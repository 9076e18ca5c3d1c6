package models

import "testing"

func TestNewConnectionFromRequestCanonicalOrdering(t *testing.T) {
	// Receiver has the lower ID; the pair must still come out ordered.
	r := &ConnectionRequest{ID: 42, SenderID: 9, ReceiverID: 3, State: RequestStateAccepted}

	c := NewConnectionFromRequest(r)
	if c.UserAID != 3 || c.UserBID != 9 {
		t.Fatalf("expected canonical (3,9), got (%d,%d)", c.UserAID, c.UserBID)
	}
	if c.ConnectionRequestID == nil || *c.ConnectionRequestID != 42 {
		t.Fatal("missing back-reference to originating request")
	}
}

func TestConnectionBeforeSaveNormalizesOrder(t *testing.T) {
	c := &Connection{UserAID: 8, UserBID: 2}
	if err := c.BeforeSave(nil); err != nil {
		t.Fatal(err)
	}
	if c.UserAID != 2 || c.UserBID != 8 {
		t.Fatalf("expected normalized (2,8), got (%d,%d)", c.UserAID, c.UserBID)
	}
}

func TestConnectionBeforeSaveRejectsSelfPair(t *testing.T) {
	c := &Connection{UserAID: 5, UserBID: 5}
	if err := c.BeforeSave(nil); err == nil {
		t.Fatal("expected validation error for self pair")
	}
}

func TestConnectionPartnerOf(t *testing.T) {
	c := &Connection{UserAID: 2, UserBID: 8}
	if got := c.PartnerOf(2); got != 8 {
		t.Fatalf("partner of user_a: got %d", got)
	}
	if got := c.PartnerOf(8); got != 2 {
		t.Fatalf("partner of user_b: got %d", got)
	}
}
