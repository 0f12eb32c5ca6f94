// Package circles implements circle matching and lifecycle: exact-match
// probing, creation, joining, leaving. Matching is deliberately exact on
// (category, location, language) — the grouping dimensions are small
// enumerations, not free text.
package circles

import (
	"time"

	"safecircle/backend/internal/errs"
	"safecircle/backend/internal/models"
	"safecircle/backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// MemberData identifies the anonymous identity joining or creating a circle.
type MemberData struct {
	AnonymousID string `json:"anonymousId" binding:"required"`
	DisplayName string `json:"displayName"`
}

// MatchParams are the grouping dimensions for match and create.
type MatchParams struct {
	Category    string `json:"category" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Language    string `json:"language" binding:"required"`
	SafetyLevel string `json:"safetyLevel" binding:"required"`
}

// CreateParams extend MatchParams with creator details.
type CreateParams struct {
	MatchParams
	WantsFacilitator bool       `json:"wantsFacilitator"`
	Creator          MemberData `json:"creator" binding:"required"`
}

// MatchResult is the outcome of a read-only match probe.
type MatchResult struct {
	Found  bool           `json:"found"`
	Circle *models.Circle `json:"circle"`
}

// Service handles circle matching and lifecycle.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new circles service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Match probes for an open circle with an identical (category, location,
// language) triple. Read-only; the caller decides whether to join or create.
func (s *Service) Match(params MatchParams) (MatchResult, error) {
	if err := validateParams(params); err != nil {
		return MatchResult{}, err
	}

	circle, err := s.Storage.FindOpenCircle(params.Category, params.Location, params.Language)
	if err != nil {
		return MatchResult{}, err
	}
	if circle == nil {
		return MatchResult{Found: false, Circle: nil}, nil
	}
	return MatchResult{Found: true, Circle: circle}, nil
}

// Create inserts a new circle with the creator as its first member.
func (s *Service) Create(params CreateParams) (*models.Circle, error) {
	if err := validateParams(params.MatchParams); err != nil {
		return nil, err
	}
	if params.Creator.AnonymousID == "" {
		return nil, &errs.ValidationError{Message: "creator anonymousId is required"}
	}

	now := time.Now()
	circle := &models.Circle{
		Category:         params.Category,
		Location:         params.Location,
		Language:         params.Language,
		SafetyLevel:      params.SafetyLevel,
		WantsFacilitator: params.WantsFacilitator,
		CreatedBy:        params.Creator.AnonymousID,
		MemberCount:      1,
		MaxMembers:       models.DefaultMaxMembers,
	}
	circle.RefreshStatus()

	creator := &models.CircleMember{
		AnonymousID: params.Creator.AnonymousID,
		DisplayName: params.Creator.DisplayName,
		IsActive:    true,
		JoinedAt:    now,
		LastActive:  now,
	}

	if err := s.Storage.CreateCircle(circle, creator); err != nil {
		return nil, err
	}

	log.Info().Str("circle_id", circle.ID).Str("category", circle.Category).Msg("circle created")
	return circle, nil
}

// Join appends a member to a circle. Joining a circle you already actively
// belong to is a no-op; rejoining after a leave reactivates the old
// membership record instead of inserting a duplicate. The whole operation
// runs with the circle row locked so concurrent joins cannot push the
// member count past capacity.
func (s *Service) Join(circleID string, data MemberData) (*models.Circle, error) {
	var joined *models.Circle
	err := s.Storage.WithCircleLock(circleID, func(tx storage.Storage) error {
		circle, err := tx.GetCircleByID(circleID)
		if err != nil {
			return err
		}
		if circle == nil {
			return &errs.NotFoundError{Resource: "circle", ID: circleID}
		}

		existing, err := tx.FindMember(circleID, data.AnonymousID)
		if err != nil {
			return err
		}
		if existing != nil && existing.IsActive {
			joined = circle
			return nil
		}

		if circle.IsFull() {
			return &errs.CapacityError{CircleID: circleID}
		}

		now := time.Now()
		if existing != nil {
			existing.IsActive = true
			existing.JoinedAt = now
			existing.LastActive = now
			if err := tx.SaveMember(existing); err != nil {
				return err
			}
		} else {
			member := &models.CircleMember{
				CircleID:    circleID,
				AnonymousID: data.AnonymousID,
				DisplayName: data.DisplayName,
				IsActive:    true,
				JoinedAt:    now,
				LastActive:  now,
			}
			if err := tx.CreateMember(member); err != nil {
				return err
			}
		}

		circle.MemberCount++
		circle.RefreshStatus()
		if err := tx.SaveCircle(circle); err != nil {
			return err
		}
		joined = circle
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("circle_id", circleID).Str("anon_id", data.AnonymousID).
		Int("member_count", joined.MemberCount).Msg("member joined circle")
	return joined, nil
}

// Leave deactivates the membership and re-derives the circle status, so a
// full circle reopens once a member leaves. Runs under the same circle row
// lock as Join.
func (s *Service) Leave(circleID, anonymousID string) (*models.Circle, error) {
	var left *models.Circle
	err := s.Storage.WithCircleLock(circleID, func(tx storage.Storage) error {
		circle, err := tx.GetCircleByID(circleID)
		if err != nil {
			return err
		}
		if circle == nil {
			return &errs.NotFoundError{Resource: "circle", ID: circleID}
		}

		member, err := tx.FindActiveMember(circleID, anonymousID)
		if err != nil {
			return err
		}
		if member == nil {
			return &errs.MembershipError{CircleID: circleID, AnonymousID: anonymousID}
		}

		member.IsActive = false
		if err := tx.SaveMember(member); err != nil {
			return err
		}

		if circle.MemberCount > 0 {
			circle.MemberCount--
		}
		circle.RefreshStatus()
		if err := tx.SaveCircle(circle); err != nil {
			return err
		}
		left = circle
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("circle_id", circleID).Str("anon_id", anonymousID).Msg("member left circle")
	return left, nil
}

// Get returns circle details.
func (s *Service) Get(circleID string) (*models.Circle, error) {
	circle, err := s.Storage.GetCircleByID(circleID)
	if err != nil {
		return nil, err
	}
	if circle == nil {
		return nil, &errs.NotFoundError{Resource: "circle", ID: circleID}
	}
	return circle, nil
}

// List returns open circles filtered by any non-empty dimension.
func (s *Service) List(category, location, language string) ([]models.Circle, error) {
	return s.Storage.ListOpenCircles(category, location, language)
}

// History returns the circle's recent messages, oldest first, for client
// rebuild after reconnect.
func (s *Service) History(circleID string, limit int) ([]models.CircleMessage, error) {
	circle, err := s.Storage.GetCircleByID(circleID)
	if err != nil {
		return nil, err
	}
	if circle == nil {
		return nil, &errs.NotFoundError{Resource: "circle", ID: circleID}
	}
	if limit <= 0 {
		limit = 50
	}
	return s.Storage.GetRecentMessages(circleID, limit)
}

func validateParams(params MatchParams) error {
	switch {
	case params.Category == "":
		return &errs.ValidationError{Message: "category is required"}
	case params.Location == "":
		return &errs.ValidationError{Message: "location is required"}
	case params.Language == "":
		return &errs.ValidationError{Message: "language is required"}
	case params.SafetyLevel == "":
		return &errs.ValidationError{Message: "safetyLevel is required"}
	}
	return nil
}
