package chathub

import "safecircle/backend/internal/models"

// Client is the interface for one realtime connection. It abstracts the
// underlying transport so the hub can manage websocket clients and test
// doubles uniformly.
type Client interface {
	// GetAnonymousID returns the anonymous identity bound to the connection.
	GetAnonymousID() string
	// GetCircleID returns the circle the connection is currently joined to,
	// or "" when it holds no room. The room fields belong to the hub
	// goroutine once the client registers; no other goroutine may touch
	// them.
	GetCircleID() string
	// SetCircleID assigns the connection to a circle room. Called only by
	// the hub goroutine.
	SetCircleID(string)
	// GetDisplayName returns the display name captured at join time.
	// Called only by the hub goroutine.
	GetDisplayName() string
	// SetDisplayName records the display name from the membership record.
	// Called only by the hub goroutine.
	SetDisplayName(string)

	// GetSendChannel returns the channel the hub writes outbound events to.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outbound channel.
	Close()
}
