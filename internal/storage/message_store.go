package storage

import (
	"errors"
	"sync"
	"time"

	"safecircle/backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// lockMap hands out one mutex per circle so appends within a circle are
// serialized and Timestamp stays monotonically non-decreasing there.
// Appends to different circles run in parallel.
type lockMap struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *lockMap) get(circleID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	if _, ok := l.locks[circleID]; !ok {
		l.locks[circleID] = &sync.Mutex{}
	}
	return l.locks[circleID]
}

// SaveAndPublishMessage assigns the server-side timestamp, appends the
// message and publishes the new-message broadcast before the circle's
// append lock is released, so broadcast order always matches persistence
// order. The timestamp, not the client clock, is the ordering key.
func (s *Service) SaveAndPublishMessage(msg *models.CircleMessage) error {
	lock := s.circleLocks.get(msg.CircleID)
	lock.Lock()
	defer lock.Unlock()

	msg.Timestamp = time.Now()
	if err := s.DB.Create(msg).Error; err != nil {
		log.Error().Err(err).Str("circle_id", msg.CircleID).Msg("failed to save message")
		return err
	}

	return s.PublishEvent(msg.CircleID, models.ServerEvent{
		Event: models.EventNewMessage,
		Data: models.NewMessagePayload{
			ID:                msg.ID,
			SenderID:          msg.SenderID,
			SenderDisplayName: msg.SenderDisplayName,
			Message:           msg.Message,
			Timestamp:         msg.Timestamp,
			Reactions:         msg.Reactions,
			FlaggedByAI:       msg.FlaggedByAI,
		},
	})
}

// ToggleReaction loads the message, toggles the caller's reaction in the
// emoji bucket, persists it and publishes the updated bucket list, all
// under the circle's append lock so concurrent toggles on one message
// serialize. Returns (nil, nil) when the message is not in the circle.
func (s *Service) ToggleReaction(circleID, messageID, emoji, anonymousID string) (*models.CircleMessage, error) {
	lock := s.circleLocks.get(circleID)
	lock.Lock()
	defer lock.Unlock()

	var msg models.CircleMessage
	err := s.DB.Preload("Reactions").Where("id = ?", messageID).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if msg.CircleID != circleID {
		return nil, nil
	}

	bucket := msg.ToggleReaction(emoji, anonymousID)
	if err := s.DB.Save(bucket).Error; err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to save reaction")
		return nil, err
	}

	err = s.PublishEvent(circleID, models.ServerEvent{
		Event: models.EventReactionUpdated,
		Data:  models.ReactionUpdatedPayload{MessageID: msg.ID, Reactions: msg.Reactions},
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetRecentMessages returns the newest messages for a circle in
// chronological order.
func (s *Service) GetRecentMessages(circleID string, limit int) ([]models.CircleMessage, error) {
	var messages []models.CircleMessage
	err := s.DB.Preload("Reactions").
		Where("circle_id = ?", circleID).
		Order("timestamp desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Newest-first from the query, oldest-first for the caller.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *Service) CountMessagesBySender(anonymousID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.CircleMessage{}).
		Where("sender_id = ?", anonymousID).
		Count(&count).Error
	return count, err
}

// SumReactionsReceived totals reaction counts across the sender's own
// messages.
func (s *Service) SumReactionsReceived(anonymousID string) (int, error) {
	var total int64
	err := s.DB.Model(&models.Reaction{}).
		Joins("JOIN circle_messages ON circle_messages.id = reactions.message_id").
		Where("circle_messages.sender_id = ?", anonymousID).
		Select("COALESCE(SUM(reactions.count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

