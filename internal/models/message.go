package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CircleMessage is one persisted chat message. Timestamp is assigned at
// persistence time and is the ordering key within a circle. Messages are
// never edited or deleted; only reaction buckets mutate in place.
type CircleMessage struct {
	ID                string `gorm:"primaryKey" json:"id"`
	CircleID          string `gorm:"type:text;not null;index:idx_msg_circle" json:"circleId"`
	SenderID          string `gorm:"type:text;not null;index" json:"senderId"`
	SenderDisplayName string `gorm:"type:text" json:"senderDisplayName"`
	Message           string `gorm:"type:text;not null" json:"message"`

	Timestamp time.Time `gorm:"index:idx_msg_circle" json:"timestamp"`

	AIRiskScore int  `json:"aiRiskScore"`
	FlaggedByAI bool `json:"flaggedByAI"`

	Reactions []Reaction `gorm:"foreignKey:MessageID" json:"reactions"`
}

// BeforeCreate generates a UUID for the message if the ID is not set.
func (m *CircleMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// ToggleReaction toggles the user's reaction in the message's bucket for
// the emoji, creating the bucket on first use. At most one bucket exists
// per emoji. Returns the mutated bucket for persistence.
func (m *CircleMessage) ToggleReaction(emoji, anonymousID string) *Reaction {
	for i := range m.Reactions {
		if m.Reactions[i].Emoji == emoji {
			m.Reactions[i].Toggle(anonymousID)
			return &m.Reactions[i]
		}
	}

	m.Reactions = append(m.Reactions, Reaction{MessageID: m.ID, Emoji: emoji})
	bucket := &m.Reactions[len(m.Reactions)-1]
	bucket.Toggle(anonymousID)
	return bucket
}

// Reaction is a per-emoji bucket on a message. Count always equals the
// number of entries in Users; toggling is per (user, emoji).
type Reaction struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	MessageID string         `gorm:"type:text;not null;index" json:"-"`
	Emoji     string         `gorm:"type:text;not null" json:"emoji"`
	Count     int            `json:"count"`
	Users     pq.StringArray `gorm:"type:text[]" json:"users"`
}

// Toggle adds the user to the bucket if absent and removes it otherwise,
// keeping Count in step. Returns true when the user ends up reacted.
func (r *Reaction) Toggle(anonymousID string) bool {
	for i, u := range r.Users {
		if u == anonymousID {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			r.Count--
			return false
		}
	}
	r.Users = append(r.Users, anonymousID)
	r.Count++
	return true
}
