package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"safecircle/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the durable-store surface consumed by the services and the
// realtime gateway. Lookups return (nil, nil) when the record is absent;
// callers decide which domain error that maps to.
type Storage interface {
	// Circles
	FindOpenCircle(category, location, language string) (*models.Circle, error)
	CreateCircle(circle *models.Circle, creator *models.CircleMember) error
	GetCircleByID(id string) (*models.Circle, error)
	SaveCircle(circle *models.Circle) error
	ListOpenCircles(category, location, language string) ([]models.Circle, error)
	WithCircleLock(circleID string, fn func(tx Storage) error) error

	// Memberships
	CreateMember(member *models.CircleMember) error
	SaveMember(member *models.CircleMember) error
	FindMember(circleID, anonymousID string) (*models.CircleMember, error)
	FindActiveMember(circleID, anonymousID string) (*models.CircleMember, error)
	CountActiveMemberships(anonymousID string) (int64, error)
	CountJoinsSince(anonymousID string, since time.Time) (int64, error)

	// Messages
	SaveAndPublishMessage(msg *models.CircleMessage) error
	ToggleReaction(circleID, messageID, emoji, anonymousID string) (*models.CircleMessage, error)
	GetRecentMessages(circleID string, limit int) ([]models.CircleMessage, error)
	CountMessagesBySender(anonymousID string) (int64, error)
	SumReactionsReceived(anonymousID string) (int, error)

	// Trust
	GetTrustScore(anonymousID string) (*models.TrustScore, error)
	SaveTrustScore(score *models.TrustScore) error

	// Realtime plumbing
	PublishEvent(circleID string, evt models.ServerEvent) error
	SubscribeEvents() *redis.PubSub
	SetRestriction(anonymousID, reason string, ttl time.Duration) error
	GetRestriction(anonymousID string) (string, error)
	ClearRestriction(anonymousID string) error
}

// Envelope is the frame published on the broadcast channel.
type Envelope struct {
	CircleID string             `json:"circleId"`
	Event    models.ServerEvent `json:"event"`
}

// BroadcastChannel is the Redis pub/sub channel carrying room broadcasts.
const BroadcastChannel = "circles:broadcast"

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context

	circleLocks lockMap
}

// NewStorageService constructor.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// PublishEvent publishes a room broadcast to Redis Pub/Sub.
func (s *Service) PublishEvent(circleID string, evt models.ServerEvent) error {
	payload, err := json.Marshal(Envelope{CircleID: circleID, Event: evt})
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, BroadcastChannel, payload).Err()
}

// SubscribeEvents subscribes to the broadcast channel.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, BroadcastChannel)
}

// SetRestriction caches a mute/ban flag in Redis so the gateway can check
// senders without a DB round trip. ttl <= 0 means no expiry.
func (s *Service) SetRestriction(anonymousID, reason string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.Redis.Set(s.Ctx, restrictionKey(anonymousID), reason, ttl).Err()
}

// GetRestriction returns the cached restriction reason, or "" when none.
func (s *Service) GetRestriction(anonymousID string) (string, error) {
	reason, err := s.Redis.Get(s.Ctx, restrictionKey(anonymousID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return reason, nil
}

func (s *Service) ClearRestriction(anonymousID string) error {
	return s.Redis.Del(s.Ctx, restrictionKey(anonymousID)).Err()
}

func restrictionKey(anonymousID string) string {
	return "restrict:" + anonymousID
}
