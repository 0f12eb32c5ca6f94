// Package trust implements the reputation and moderation engine. Trust is
// always re-derived from persisted activity, never incrementally drifted.
package trust

import (
	"time"

	"safecircle/backend/internal/config"
	"safecircle/backend/internal/models"
	"safecircle/backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// Service handles the business logic for reputation and moderation.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new trust service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Recompute re-derives the identity's trust record from the message and
// membership stores. A lazily-created record is returned for identities
// with no history yet. Expired mutes are cleared here.
func (s *Service) Recompute(anonymousID string) (*models.TrustScore, error) {
	score, err := s.getOrCreate(anonymousID)
	if err != nil {
		return nil, err
	}

	messages, err := s.Storage.CountMessagesBySender(anonymousID)
	if err != nil {
		return nil, err
	}
	circlesJoined, err := s.Storage.CountActiveMemberships(anonymousID)
	if err != nil {
		return nil, err
	}
	reactions, err := s.Storage.SumReactionsReceived(anonymousID)
	if err != nil {
		return nil, err
	}

	helpfulness := reactions*config.ReactionWeight +
		int(messages)*config.MessageWeight -
		score.ReportCount*config.ReportPenalty
	if helpfulness > config.MaxHelpfulness {
		helpfulness = config.MaxHelpfulness
	}
	if helpfulness < 0 {
		helpfulness = 0
	}

	// Any report is a hard veto on level, regardless of activity volume.
	level := config.TrustLevelNewcomer
	if score.ReportCount == 0 {
		if messages >= config.VeteranMinMessages && reactions >= config.VeteranMinReactions {
			level = config.TrustLevelVeteran
		} else if messages >= config.TrustedMinMessages && reactions >= config.TrustedMinReactions {
			level = config.TrustLevelTrusted
		}
	}

	now := time.Now()
	if score.IsMuted && !score.IsBanned && score.MutedUntil != nil && now.After(*score.MutedUntil) {
		score.IsMuted = false
		score.MutedUntil = nil
		if err := s.Storage.ClearRestriction(anonymousID); err != nil {
			log.Warn().Err(err).Str("anon_id", anonymousID).Msg("failed to clear restriction cache")
		}
	}

	score.MessagesCount = int(messages)
	score.JoinedCirclesCount = int(circlesJoined)
	score.ReactionsReceived = reactions
	score.HelpfulnessScore = helpfulness
	score.TrustLevel = level
	score.LastActivityAt = now

	if err := s.Storage.SaveTrustScore(score); err != nil {
		return nil, err
	}
	return score, nil
}

// Report records a report against an identity and auto-mutes it for seven
// days once the report count reaches the threshold. Returns whether the
// identity is now muted.
func (s *Service) Report(reporterID, reportedID, reason, circleID string) (bool, error) {
	score, err := s.Recompute(reportedID)
	if err != nil {
		return false, err
	}

	score.ReportCount++

	if score.ReportCount >= config.AutoMuteReportThreshold && !score.IsMuted {
		until := time.Now().Add(config.AutoMuteDuration)
		score.IsMuted = true
		score.MutedUntil = &until
		s.cacheRestriction(reportedID, "muted", config.AutoMuteDuration)
	}

	// The report itself invalidates the just-computed level.
	score.TrustLevel = config.TrustLevelNewcomer

	if err := s.Storage.SaveTrustScore(score); err != nil {
		return false, err
	}

	log.Info().Str("reporter", reporterID).Str("reported", reportedID).
		Str("circle_id", circleID).Str("reason", reason).
		Int("report_count", score.ReportCount).Bool("muted", score.IsMuted).
		Msg("user reported")
	return score.IsMuted, nil
}

// Block permanently bans and mutes an identity. This is a unilateral
// moderation action, distinct from the reputation-driven auto-mute.
func (s *Service) Block(anonymousID string) error {
	score, err := s.getOrCreate(anonymousID)
	if err != nil {
		return err
	}

	score.IsBanned = true
	score.IsMuted = true
	if err := s.Storage.SaveTrustScore(score); err != nil {
		return err
	}

	s.cacheRestriction(anonymousID, "banned", 0)
	log.Warn().Str("anon_id", anonymousID).Msg("user blocked")
	return nil
}

// Mute applies an explicit moderator mute with a caller-supplied duration
// and counts a warning against the identity.
func (s *Service) Mute(anonymousID string, days int, reason string) (time.Time, error) {
	if days <= 0 {
		days = config.DefaultMuteDays
	}

	score, err := s.getOrCreate(anonymousID)
	if err != nil {
		return time.Time{}, err
	}

	duration := time.Duration(days) * 24 * time.Hour
	until := time.Now().Add(duration)
	score.IsMuted = true
	score.MutedUntil = &until
	score.WarningsReceived++

	if err := s.Storage.SaveTrustScore(score); err != nil {
		return time.Time{}, err
	}

	s.cacheRestriction(anonymousID, "muted", duration)
	log.Warn().Str("anon_id", anonymousID).Int("days", days).Str("reason", reason).Msg("user muted")
	return until, nil
}

// IsRestricted reports whether the identity is currently muted or banned.
// The Redis cache is consulted first; a miss falls back to the durable
// record.
func (s *Service) IsRestricted(anonymousID string) (bool, string, error) {
	reason, err := s.Storage.GetRestriction(anonymousID)
	if err != nil {
		log.Warn().Err(err).Str("anon_id", anonymousID).Msg("restriction cache unavailable")
	} else if reason != "" {
		return true, reason, nil
	}

	score, err := s.Storage.GetTrustScore(anonymousID)
	if err != nil {
		return false, "", err
	}
	if score == nil {
		return false, "", nil
	}
	if !score.Restricted(time.Now()) {
		return false, "", nil
	}
	if score.IsBanned {
		return true, "banned", nil
	}
	return true, "muted", nil
}

// SuspiciousResult is the outcome of the activity probe.
type SuspiciousResult struct {
	Suspicious bool     `json:"suspicious"`
	Reasons    []string `json:"reasons"`
}

// CheckSuspicious runs heuristics over recent activity: rapid circle
// joining, accumulated reports, and low helpfulness at volume.
func (s *Service) CheckSuspicious(anonymousID string) (SuspiciousResult, error) {
	score, err := s.Recompute(anonymousID)
	if err != nil {
		return SuspiciousResult{}, err
	}

	result := SuspiciousResult{Reasons: []string{}}

	recentJoins, err := s.Storage.CountJoinsSince(anonymousID, time.Now().Add(-config.RapidJoinWindow))
	if err != nil {
		return SuspiciousResult{}, err
	}
	if recentJoins > config.RapidJoinThreshold {
		result.Reasons = append(result.Reasons, "Rapid circle joining")
	}
	if score.ReportCount >= config.SuspiciousMinReports {
		result.Reasons = append(result.Reasons, "Multiple reports")
	}
	if score.MessagesCount > config.LowHelpfulnessMinMsg && score.HelpfulnessScore < config.LowHelpfulnessFloor {
		result.Reasons = append(result.Reasons, "Low helpfulness score")
	}

	result.Suspicious = len(result.Reasons) > 0
	return result, nil
}

func (s *Service) getOrCreate(anonymousID string) (*models.TrustScore, error) {
	score, err := s.Storage.GetTrustScore(anonymousID)
	if err != nil {
		return nil, err
	}
	if score == nil {
		score = &models.TrustScore{
			AnonymousID:      anonymousID,
			TrustLevel:       config.TrustLevelNewcomer,
			AccountCreatedAt: time.Now(),
			LastActivityAt:   time.Now(),
		}
	}
	return score, nil
}

func (s *Service) cacheRestriction(anonymousID, reason string, ttl time.Duration) {
	if err := s.Storage.SetRestriction(anonymousID, reason, ttl); err != nil {
		log.Warn().Err(err).Str("anon_id", anonymousID).Msg("failed to cache restriction")
	}
}
