package chathub_test

import (
	"time"

	"safecircle/backend/internal/models"
	"safecircle/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) FindOpenCircle(category, location, language string) (*models.Circle, error) {
	args := m.Called(category, location, language)
	circle, _ := args.Get(0).(*models.Circle)
	return circle, args.Error(1)
}

func (m *MockStorage) CreateCircle(circle *models.Circle, creator *models.CircleMember) error {
	args := m.Called(circle, creator)
	return args.Error(0)
}

func (m *MockStorage) GetCircleByID(id string) (*models.Circle, error) {
	args := m.Called(id)
	circle, _ := args.Get(0).(*models.Circle)
	return circle, args.Error(1)
}

func (m *MockStorage) SaveCircle(circle *models.Circle) error {
	args := m.Called(circle)
	return args.Error(0)
}

func (m *MockStorage) ListOpenCircles(category, location, language string) ([]models.Circle, error) {
	args := m.Called(category, location, language)
	circles, _ := args.Get(0).([]models.Circle)
	return circles, args.Error(1)
}

func (m *MockStorage) WithCircleLock(circleID string, fn func(tx storage.Storage) error) error {
	args := m.Called(circleID, fn)
	return args.Error(0)
}

func (m *MockStorage) CreateMember(member *models.CircleMember) error {
	args := m.Called(member)
	return args.Error(0)
}

func (m *MockStorage) SaveMember(member *models.CircleMember) error {
	args := m.Called(member)
	return args.Error(0)
}

func (m *MockStorage) FindMember(circleID, anonymousID string) (*models.CircleMember, error) {
	args := m.Called(circleID, anonymousID)
	member, _ := args.Get(0).(*models.CircleMember)
	return member, args.Error(1)
}

func (m *MockStorage) FindActiveMember(circleID, anonymousID string) (*models.CircleMember, error) {
	args := m.Called(circleID, anonymousID)
	member, _ := args.Get(0).(*models.CircleMember)
	return member, args.Error(1)
}

func (m *MockStorage) CountActiveMemberships(anonymousID string) (int64, error) {
	args := m.Called(anonymousID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) CountJoinsSince(anonymousID string, since time.Time) (int64, error) {
	args := m.Called(anonymousID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) SaveAndPublishMessage(msg *models.CircleMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) ToggleReaction(circleID, messageID, emoji, anonymousID string) (*models.CircleMessage, error) {
	args := m.Called(circleID, messageID, emoji, anonymousID)
	msg, _ := args.Get(0).(*models.CircleMessage)
	return msg, args.Error(1)
}

func (m *MockStorage) GetRecentMessages(circleID string, limit int) ([]models.CircleMessage, error) {
	args := m.Called(circleID, limit)
	msgs, _ := args.Get(0).([]models.CircleMessage)
	return msgs, args.Error(1)
}

func (m *MockStorage) CountMessagesBySender(anonymousID string) (int64, error) {
	args := m.Called(anonymousID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) SumReactionsReceived(anonymousID string) (int, error) {
	args := m.Called(anonymousID)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) GetTrustScore(anonymousID string) (*models.TrustScore, error) {
	args := m.Called(anonymousID)
	score, _ := args.Get(0).(*models.TrustScore)
	return score, args.Error(1)
}

func (m *MockStorage) SaveTrustScore(score *models.TrustScore) error {
	args := m.Called(score)
	return args.Error(0)
}

func (m *MockStorage) PublishEvent(circleID string, evt models.ServerEvent) error {
	args := m.Called(circleID, evt)
	return args.Error(0)
}

func (m *MockStorage) SubscribeEvents() *redis.PubSub {
	args := m.Called()
	pubsub, _ := args.Get(0).(*redis.PubSub)
	return pubsub
}

func (m *MockStorage) SetRestriction(anonymousID, reason string, ttl time.Duration) error {
	args := m.Called(anonymousID, reason, ttl)
	return args.Error(0)
}

func (m *MockStorage) GetRestriction(anonymousID string) (string, error) {
	args := m.Called(anonymousID)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ClearRestriction(anonymousID string) error {
	args := m.Called(anonymousID)
	return args.Error(0)
}
