package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CircleStatusOpen     = "open"
	CircleStatusFull     = "full"
	CircleStatusArchived = "archived"
)

const DefaultMaxMembers = 5

// Circle is a bounded anonymous support group sharing an incident
// category, location and language.
type Circle struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Category    string `gorm:"not null;index:idx_circle_match" json:"category"`
	Location    string `gorm:"not null;index:idx_circle_match" json:"location"`
	Language    string `gorm:"not null;index:idx_circle_match" json:"language"`
	SafetyLevel string `gorm:"not null" json:"safetyLevel"`

	WantsFacilitator bool   `json:"wantsFacilitator"`
	FacilitatorID    string `json:"facilitatorId,omitempty"`
	ChatRoomURL      string `json:"chatRoomUrl,omitempty"`
	CreatedBy        string `json:"createdBy"`

	MemberCount int    `json:"memberCount"`
	MaxMembers  int    `json:"maxMembers"`
	Status      string `gorm:"index" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate generates a UUID for the circle if the ID is not set.
func (c *Circle) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// RefreshStatus re-derives Status from the member count. It is the only
// write path for the field; archived circles stay archived.
func (c *Circle) RefreshStatus() {
	if c.Status == CircleStatusArchived {
		return
	}
	if c.MemberCount >= c.MaxMembers {
		c.Status = CircleStatusFull
	} else {
		c.Status = CircleStatusOpen
	}
}

// IsFull reports whether the circle has reached capacity.
func (c *Circle) IsFull() bool {
	return c.MemberCount >= c.MaxMembers
}

// CircleMember is one anonymous identity's membership in a circle.
// Records are deactivated on leave, never deleted.
type CircleMember struct {
	gorm.Model

	CircleID    string `gorm:"type:text;not null;index:idx_member_circle" json:"circleId"`
	AnonymousID string `gorm:"type:text;not null;index:idx_member_circle" json:"anonymousId"`
	DisplayName string `gorm:"type:text" json:"displayName"`
	IsActive    bool   `gorm:"index" json:"isActive"`

	MessageCount int       `json:"messageCount"`
	LastActive   time.Time `json:"lastActive"`
	JoinedAt     time.Time `json:"joinedAt"`
}
