package circles_test

import (
	"sort"
	"sync"
	"time"

	"safecircle/backend/internal/models"
	"safecircle/backend/internal/storage"
)

// fakeStorage is a stateful in-memory Storage for circle lifecycle tests.
// The embedded interface panics on anything the circles service should
// never touch.
type fakeStorage struct {
	storage.Storage

	circles  map[string]*models.Circle
	members  []*models.CircleMember
	messages map[string][]models.CircleMessage

	nextMemberID uint
	seq          int

	// Serializes WithCircleLock callbacks the way the real store's row
	// lock does.
	txMu sync.Mutex
}

func (f *fakeStorage) WithCircleLock(circleID string, fn func(tx storage.Storage) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return fn(f)
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		circles:  make(map[string]*models.Circle),
		messages: make(map[string][]models.CircleMessage),
	}
}

func (f *fakeStorage) FindOpenCircle(category, location, language string) (*models.Circle, error) {
	var matches []*models.Circle
	for _, c := range f.circles {
		if c.Category == category && c.Location == location && c.Language == language &&
			c.Status == models.CircleStatusOpen {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	copied := *matches[0]
	return &copied, nil
}

func (f *fakeStorage) CreateCircle(circle *models.Circle, creator *models.CircleMember) error {
	if err := circle.BeforeCreate(nil); err != nil {
		return err
	}
	f.seq++
	circle.CreatedAt = time.Unix(int64(f.seq), 0)
	stored := *circle
	f.circles[circle.ID] = &stored

	creator.CircleID = circle.ID
	return f.CreateMember(creator)
}

func (f *fakeStorage) GetCircleByID(id string) (*models.Circle, error) {
	c, ok := f.circles[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStorage) SaveCircle(circle *models.Circle) error {
	stored := *circle
	f.circles[circle.ID] = &stored
	return nil
}

func (f *fakeStorage) ListOpenCircles(category, location, language string) ([]models.Circle, error) {
	var out []models.Circle
	for _, c := range f.circles {
		if c.Status != models.CircleStatusOpen {
			continue
		}
		if category != "" && c.Category != category {
			continue
		}
		if location != "" && c.Location != location {
			continue
		}
		if language != "" && c.Language != language {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStorage) CreateMember(member *models.CircleMember) error {
	f.nextMemberID++
	member.ID = f.nextMemberID
	stored := *member
	f.members = append(f.members, &stored)
	return nil
}

func (f *fakeStorage) SaveMember(member *models.CircleMember) error {
	for i, m := range f.members {
		if m.ID == member.ID {
			stored := *member
			f.members[i] = &stored
			return nil
		}
	}
	return f.CreateMember(member)
}

func (f *fakeStorage) FindMember(circleID, anonymousID string) (*models.CircleMember, error) {
	for i := len(f.members) - 1; i >= 0; i-- {
		m := f.members[i]
		if m.CircleID == circleID && m.AnonymousID == anonymousID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) FindActiveMember(circleID, anonymousID string) (*models.CircleMember, error) {
	for _, m := range f.members {
		if m.CircleID == circleID && m.AnonymousID == anonymousID && m.IsActive {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) GetRecentMessages(circleID string, limit int) ([]models.CircleMessage, error) {
	msgs := f.messages[circleID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (f *fakeStorage) memberRecords(circleID, anonymousID string) int {
	count := 0
	for _, m := range f.members {
		if m.CircleID == circleID && m.AnonymousID == anonymousID {
			count++
		}
	}
	return count
}
