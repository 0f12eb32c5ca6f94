package storage

import (
	"errors"

	"safecircle/backend/internal/models"

	"gorm.io/gorm"
)

// GetTrustScore returns the reputation record, or (nil, nil) when the
// identity has none yet. Records are created lazily by the trust service.
func (s *Service) GetTrustScore(anonymousID string) (*models.TrustScore, error) {
	var score models.TrustScore
	err := s.DB.Where("anonymous_id = ?", anonymousID).First(&score).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *Service) SaveTrustScore(score *models.TrustScore) error {
	return s.DB.Save(score).Error
}
