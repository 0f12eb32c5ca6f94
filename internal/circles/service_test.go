package circles_test

import (
	"fmt"
	"sync"
	"testing"

	"safecircle/backend/internal/circles"
	"safecircle/backend/internal/errs"
	"safecircle/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func harassmentParams() circles.MatchParams {
	return circles.MatchParams{
		Category:    "Harassment",
		Location:    "Nairobi",
		Language:    "English",
		SafetyLevel: "Low",
	}
}

func TestMatch_EmptyStore(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	result, err := svc.Match(harassmentParams())

	assert.NoError(t, err)
	assert.False(t, result.Found)
	assert.Nil(t, result.Circle)
}

func TestMatch_AfterCreateFindsTheCircle(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	created, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-creator", DisplayName: "Hope"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, created.MemberCount)
	assert.Equal(t, models.CircleStatusOpen, created.Status)
	assert.Equal(t, models.DefaultMaxMembers, created.MaxMembers)

	result, err := svc.Match(harassmentParams())
	assert.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, created.ID, result.Circle.ID)
}

func TestMatch_IsExact(t *testing.T) {
	fake := newFakeStorage()
	svc := circles.NewService(fake)

	_, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-creator"},
	})
	assert.NoError(t, err)

	other := harassmentParams()
	other.Location = "Mombasa"
	result, err := svc.Match(other)
	assert.NoError(t, err)
	assert.False(t, result.Found, "location mismatch must not match")
}

func TestMatch_PrefersOldestCircle(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	first, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-1"},
	})
	assert.NoError(t, err)
	_, err = svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-2"},
	})
	assert.NoError(t, err)

	result, err := svc.Match(harassmentParams())
	assert.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, first.ID, result.Circle.ID, "oldest open circle wins")
}

func TestMatch_MissingFields(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	params := harassmentParams()
	params.Language = ""
	_, err := svc.Match(params)

	var validationErr *errs.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestJoin_UntilFullThenCapacityError(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	created, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-0"},
	})
	assert.NoError(t, err)

	var circle *models.Circle
	for i := 1; i <= 4; i++ {
		circle, err = svc.Join(created.ID, circles.MemberData{
			AnonymousID: fmt.Sprintf("anon-%d", i),
		})
		assert.NoError(t, err)
		assert.LessOrEqual(t, circle.MemberCount, circle.MaxMembers)
	}
	assert.Equal(t, 5, circle.MemberCount)
	assert.Equal(t, models.CircleStatusFull, circle.Status)

	_, err = svc.Join(created.ID, circles.MemberData{AnonymousID: "anon-5"})
	var capacityErr *errs.CapacityError
	assert.ErrorAs(t, err, &capacityErr)

	unchanged, err := svc.Get(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, 5, unchanged.MemberCount)

	// The full circle no longer matches.
	result, err := svc.Match(harassmentParams())
	assert.NoError(t, err)
	assert.False(t, result.Found)
}

func TestJoin_ConcurrentJoinsNeverOversubscribe(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	created, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-0"},
	})
	assert.NoError(t, err)

	const contenders = 10
	results := make(chan error, contenders)
	var wg sync.WaitGroup
	for i := 1; i <= contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Join(created.ID, circles.MemberData{
				AnonymousID: fmt.Sprintf("anon-%d", n),
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	admitted, rejected := 0, 0
	for err := range results {
		if err == nil {
			admitted++
			continue
		}
		var capacityErr *errs.CapacityError
		assert.ErrorAs(t, err, &capacityErr)
		rejected++
	}
	assert.Equal(t, 4, admitted)
	assert.Equal(t, contenders-4, rejected)

	circle, err := svc.Get(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, 5, circle.MemberCount, "capacity must hold under concurrent joins")
	assert.Equal(t, models.CircleStatusFull, circle.Status)
}

func TestJoin_UnknownCircle(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	_, err := svc.Join("no-such-circle", circles.MemberData{AnonymousID: "anon-1"})

	var notFoundErr *errs.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestJoin_AlreadyActiveMemberIsNoOp(t *testing.T) {
	fake := newFakeStorage()
	svc := circles.NewService(fake)

	created, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-0"},
	})
	assert.NoError(t, err)

	circle, err := svc.Join(created.ID, circles.MemberData{AnonymousID: "anon-0"})
	assert.NoError(t, err)
	assert.Equal(t, 1, circle.MemberCount, "rejoining while active must not duplicate")
	assert.Equal(t, 1, fake.memberRecords(created.ID, "anon-0"))
}

func TestLeave_ReopensFullCircle(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	created, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-0"},
	})
	assert.NoError(t, err)
	for i := 1; i <= 4; i++ {
		_, err = svc.Join(created.ID, circles.MemberData{AnonymousID: fmt.Sprintf("anon-%d", i)})
		assert.NoError(t, err)
	}

	circle, err := svc.Leave(created.ID, "anon-3")
	assert.NoError(t, err)
	assert.Equal(t, 4, circle.MemberCount)
	assert.Equal(t, models.CircleStatusOpen, circle.Status)
}

func TestLeave_ThenRejoinReactivatesRecord(t *testing.T) {
	fake := newFakeStorage()
	svc := circles.NewService(fake)

	created, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-0"},
	})
	assert.NoError(t, err)
	_, err = svc.Join(created.ID, circles.MemberData{AnonymousID: "anon-1"})
	assert.NoError(t, err)

	_, err = svc.Leave(created.ID, "anon-1")
	assert.NoError(t, err)

	circle, err := svc.Join(created.ID, circles.MemberData{AnonymousID: "anon-1"})
	assert.NoError(t, err)
	assert.Equal(t, 2, circle.MemberCount)
	assert.Equal(t, 1, fake.memberRecords(created.ID, "anon-1"), "rejoin must reactivate, not duplicate")
}

func TestLeave_NonMember(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	created, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-0"},
	})
	assert.NoError(t, err)

	_, err = svc.Leave(created.ID, "stranger")
	var membershipErr *errs.MembershipError
	assert.ErrorAs(t, err, &membershipErr)
}

func TestList_FiltersOpenCircles(t *testing.T) {
	svc := circles.NewService(newFakeStorage())

	_, err := svc.Create(circles.CreateParams{
		MatchParams: harassmentParams(),
		Creator:     circles.MemberData{AnonymousID: "anon-0"},
	})
	assert.NoError(t, err)

	other := harassmentParams()
	other.Category = "Theft"
	_, err = svc.Create(circles.CreateParams{
		MatchParams: other,
		Creator:     circles.MemberData{AnonymousID: "anon-1"},
	})
	assert.NoError(t, err)

	all, err := svc.List("", "Nairobi", "")
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List("Theft", "", "")
	assert.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "Theft", filtered[0].Category)
}
