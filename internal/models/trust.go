package models

import "time"

// TrustScore is the durable reputation record for one anonymous identity.
// Derived fields (level, helpfulness, counters) are recomputed from the
// message and membership stores on demand, never incrementally drifted.
type TrustScore struct {
	AnonymousID string `gorm:"primaryKey" json:"anonymousId"`

	TrustLevel       string `json:"trustLevel"`
	HelpfulnessScore int    `json:"helpfulnessScore"`

	ReportCount        int `json:"reportCount"`
	JoinedCirclesCount int `json:"joinedCirclesCount"`
	MessagesCount      int `json:"messagesCount"`
	ReactionsReceived  int `json:"reactionsReceived"`
	WarningsReceived   int `json:"warningsReceived"`

	IsMuted    bool       `json:"isMuted"`
	MutedUntil *time.Time `json:"mutedUntil,omitempty"`
	IsBanned   bool       `json:"isBanned"`

	LastActivityAt   time.Time `json:"lastActivityAt"`
	AccountCreatedAt time.Time `gorm:"autoCreateTime" json:"accountCreatedAt"`
}

// Restricted reports whether the identity may not write right now. An
// expired mute no longer restricts.
func (t *TrustScore) Restricted(now time.Time) bool {
	if t.IsBanned {
		return true
	}
	if t.IsMuted {
		if t.MutedUntil == nil || now.Before(*t.MutedUntil) {
			return true
		}
	}
	return false
}
