package storage

import (
	"errors"
	"time"

	"safecircle/backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindOpenCircle returns the oldest open circle matching the exact
// (category, location, language) triple, or (nil, nil) when none exists.
// Oldest-first keeps matching deterministic for a given store state.
func (s *Service) FindOpenCircle(category, location, language string) (*models.Circle, error) {
	var circle models.Circle
	err := s.DB.Where("category = ? AND location = ? AND language = ? AND status = ?",
		category, location, language, models.CircleStatusOpen).
		Order("created_at asc").
		First(&circle).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &circle, nil
}

// CreateCircle inserts the circle and its creator membership in one
// transaction.
func (s *Service) CreateCircle(circle *models.Circle, creator *models.CircleMember) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(circle).Error; err != nil {
			return err
		}
		creator.CircleID = circle.ID
		return tx.Create(creator).Error
	})
}

// GetCircleByID returns the circle, or (nil, nil) when absent.
func (s *Service) GetCircleByID(id string) (*models.Circle, error) {
	var circle models.Circle
	err := s.DB.Where("id = ?", id).First(&circle).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Str("circle_id", id).Msg("failed to get circle")
		return nil, err
	}
	return &circle, nil
}

func (s *Service) SaveCircle(circle *models.Circle) error {
	return s.DB.Save(circle).Error
}

// WithCircleLock runs fn against a Storage view scoped to one transaction
// with the circle row locked for update. Concurrent membership mutations
// on the same circle serialize here, so the capacity check and the member
// count update cannot interleave.
func (s *Service) WithCircleLock(circleID string, fn func(tx Storage) error) error {
	return s.DB.Transaction(func(txDB *gorm.DB) error {
		var circle models.Circle
		err := txDB.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", circleID).
			First(&circle).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return fn(&Service{DB: txDB, Redis: s.Redis, Ctx: s.Ctx})
	})
}

// ListOpenCircles returns open circles, newest first, filtered by any
// non-empty dimension.
func (s *Service) ListOpenCircles(category, location, language string) ([]models.Circle, error) {
	q := s.DB.Where("status = ?", models.CircleStatusOpen)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if location != "" {
		q = q.Where("location = ?", location)
	}
	if language != "" {
		q = q.Where("language = ?", language)
	}

	var circles []models.Circle
	if err := q.Order("created_at desc").Find(&circles).Error; err != nil {
		return nil, err
	}
	return circles, nil
}

func (s *Service) CreateMember(member *models.CircleMember) error {
	return s.DB.Create(member).Error
}

func (s *Service) SaveMember(member *models.CircleMember) error {
	return s.DB.Save(member).Error
}

// FindMember returns the latest membership record for the pair, active or
// not, or (nil, nil) when the identity never joined the circle.
func (s *Service) FindMember(circleID, anonymousID string) (*models.CircleMember, error) {
	var member models.CircleMember
	err := s.DB.Where("circle_id = ? AND anonymous_id = ?", circleID, anonymousID).
		Last(&member).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindActiveMember returns the active membership record for the pair, or
// (nil, nil) when there is none.
func (s *Service) FindActiveMember(circleID, anonymousID string) (*models.CircleMember, error) {
	var member models.CircleMember
	err := s.DB.Where("circle_id = ? AND anonymous_id = ? AND is_active = ?",
		circleID, anonymousID, true).
		First(&member).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *Service) CountActiveMemberships(anonymousID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.CircleMember{}).
		Where("anonymous_id = ? AND is_active = ?", anonymousID, true).
		Count(&count).Error
	return count, err
}

// CountJoinsSince counts memberships created after the given time,
// used by the suspicious-activity probe.
func (s *Service) CountJoinsSince(anonymousID string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.Model(&models.CircleMember{}).
		Where("anonymous_id = ? AND joined_at >= ?", anonymousID, since).
		Count(&count).Error
	return count, err
}
