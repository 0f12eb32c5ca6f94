package models

import "time"

// Client -> server event names.
const (
	EventJoinCircle      = "join-circle"
	EventLeaveCircle     = "leave-circle"
	EventSendMessage     = "send-message"
	EventTyping          = "typing"
	EventStopTyping      = "stop-typing"
	EventMessageReaction = "message-reaction"
)

// Server -> client event names.
const (
	EventOnlineMembers   = "online-members"
	EventMemberOnline    = "member-online"
	EventMemberOffline   = "member-offline"
	EventNewMessage      = "new-message"
	EventMessageSent     = "message-sent"
	EventUserTyping      = "user-typing"
	EventUserStopTyping  = "user-stop-typing"
	EventReactionUpdated = "message-reaction-updated"
	EventError           = "error"
)

// ClientEvent is the inbound frame read from a websocket connection.
type ClientEvent struct {
	Event       string `json:"event"`
	CircleID    string `json:"circleId"`
	AnonymousID string `json:"anonymousId"`
	Message     string `json:"message,omitempty"`
	MessageID   string `json:"messageId,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
}

// ServerEvent is the outbound frame written to a websocket connection.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type OnlineMember struct {
	AnonymousID string `json:"anonymousId"`
}

type OnlineMembersPayload struct {
	Members []OnlineMember `json:"members"`
}

type MemberOnlinePayload struct {
	AnonymousID string `json:"anonymousId"`
	DisplayName string `json:"displayName"`
}

type MemberOfflinePayload struct {
	AnonymousID string `json:"anonymousId"`
}

type NewMessagePayload struct {
	ID                string     `json:"id"`
	SenderID          string     `json:"senderId"`
	SenderDisplayName string     `json:"senderDisplayName"`
	Message           string     `json:"message"`
	Timestamp         time.Time  `json:"timestamp"`
	Reactions         []Reaction `json:"reactions"`
	FlaggedByAI       bool       `json:"flaggedByAI"`
}

type MessageSentPayload struct {
	MessageID string    `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
}

type TypingPayload struct {
	AnonymousID string `json:"anonymousId"`
	DisplayName string `json:"displayName,omitempty"`
}

type ReactionUpdatedPayload struct {
	MessageID string     `json:"messageId"`
	Reactions []Reaction `json:"reactions"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
