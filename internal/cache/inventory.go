package cache

import (
	"context"
	"fmt"
	"time"
)

// Key patterns for the per-user connection inventory. Every write to a
// request or connection invalidates the inventory for both participants.
const (
	SentRequestsKeyPrefix        = "user:%d:sent_requests"
	ReceivedRequestsKeyPrefix    = "user:%d:received_requests"
	AcceptedConnectionsKeyPrefix = "user:%d:accepted_connections"
	ConnectionCountKeyPrefix     = "user:%d:connection_count"
	UserKeyPrefix                = "user:%d"
)

// TTLs per key category. Requests churn faster than realized connections.
// Overridden at startup from config via ConfigureTTLs.
var (
	RequestsTTL    = 5 * time.Minute
	ConnectionsTTL = 10 * time.Minute
	UserTTL        = 5 * time.Minute
)

// ConfigureTTLs applies configured TTLs to the inventory key categories.
// Zero values leave the defaults in place.
func ConfigureTTLs(requests, connections time.Duration) {
	if requests > 0 {
		RequestsTTL = requests
	}
	if connections > 0 {
		ConnectionsTTL = connections
	}
}

func SentRequestsKey(userID uint) string {
	return fmt.Sprintf(SentRequestsKeyPrefix, userID)
}

func ReceivedRequestsKey(userID uint) string {
	return fmt.Sprintf(ReceivedRequestsKeyPrefix, userID)
}

func AcceptedConnectionsKey(userID uint) string {
	return fmt.Sprintf(AcceptedConnectionsKeyPrefix, userID)
}

func ConnectionCountKey(userID uint) string {
	return fmt.Sprintf(ConnectionCountKeyPrefix, userID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUserConnections drops every inventory key for a user. Called on
// both participants after any request or connection mutation.
func InvalidateUserConnections(ctx context.Context, userID uint) {
	Invalidate(ctx, SentRequestsKey(userID))
	Invalidate(ctx, ReceivedRequestsKey(userID))
	Invalidate(ctx, AcceptedConnectionsKey(userID))
	Invalidate(ctx, ConnectionCountKey(userID))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
