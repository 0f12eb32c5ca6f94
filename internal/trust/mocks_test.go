package trust_test

import (
	"time"

	"safecircle/backend/internal/models"
	"safecircle/backend/internal/storage"
)

// fakeStorage is a stateful in-memory Storage for trust engine tests.
type fakeStorage struct {
	storage.Storage

	scores       map[string]*models.TrustScore
	restrictions map[string]string

	messageCounts  map[string]int64
	activeCircles  map[string]int64
	reactionTotals map[string]int
	recentJoins    map[string]int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		scores:         make(map[string]*models.TrustScore),
		restrictions:   make(map[string]string),
		messageCounts:  make(map[string]int64),
		activeCircles:  make(map[string]int64),
		reactionTotals: make(map[string]int),
		recentJoins:    make(map[string]int64),
	}
}

func (f *fakeStorage) GetTrustScore(anonymousID string) (*models.TrustScore, error) {
	s, ok := f.scores[anonymousID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStorage) SaveTrustScore(score *models.TrustScore) error {
	stored := *score
	f.scores[score.AnonymousID] = &stored
	return nil
}

func (f *fakeStorage) CountMessagesBySender(anonymousID string) (int64, error) {
	return f.messageCounts[anonymousID], nil
}

func (f *fakeStorage) CountActiveMemberships(anonymousID string) (int64, error) {
	return f.activeCircles[anonymousID], nil
}

func (f *fakeStorage) SumReactionsReceived(anonymousID string) (int, error) {
	return f.reactionTotals[anonymousID], nil
}

func (f *fakeStorage) CountJoinsSince(anonymousID string, since time.Time) (int64, error) {
	return f.recentJoins[anonymousID], nil
}

func (f *fakeStorage) SetRestriction(anonymousID, reason string, ttl time.Duration) error {
	f.restrictions[anonymousID] = reason
	return nil
}

func (f *fakeStorage) GetRestriction(anonymousID string) (string, error) {
	return f.restrictions[anonymousID], nil
}

func (f *fakeStorage) ClearRestriction(anonymousID string) error {
	delete(f.restrictions, anonymousID)
	return nil
}
