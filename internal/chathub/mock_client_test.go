package chathub_test

import (
	"safecircle/backend/internal/models"
)

type MockClient struct {
	anonID      string
	circleID    string
	displayName string
	RecvChannel chan models.ServerEvent
	Closed      chan struct{}
}

func newMockClient(anonID string) *MockClient {
	return &MockClient{
		anonID:      anonID,
		RecvChannel: make(chan models.ServerEvent, 16),
		Closed:      make(chan struct{}, 4),
	}
}

func (c *MockClient) GetAnonymousID() string {
	return c.anonID
}

func (c *MockClient) GetCircleID() string {
	return c.circleID
}

func (c *MockClient) SetCircleID(circleID string) {
	c.circleID = circleID
}

func (c *MockClient) GetDisplayName() string {
	return c.displayName
}

func (c *MockClient) SetDisplayName(name string) {
	c.displayName = name
}

func (c *MockClient) GetSendChannel() chan<- models.ServerEvent {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.Closed <- struct{}{}
}
