// Package storetest holds the behaviour every store.Store must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/odysai-api-go/pkg/models"
	"github.com/arnavshah/odysai-api-go/pkg/store"
	"github.com/arnavshah/odysai-api-go/pkg/voting"
)

// Run exercises a fresh store returned by newStore
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Rooms", func(t *testing.T) { testRooms(t, newStore(t)) })
	t.Run("Members", func(t *testing.T) { testMembers(t, newStore(t)) })
	t.Run("Plans", func(t *testing.T) { testPlans(t, newStore(t)) })
	t.Run("Votes", func(t *testing.T) { testVotes(t, newStore(t)) })
	t.Run("ConcurrentVotes", func(t *testing.T) { testConcurrentVotes(t, newStore(t)) })
	t.Run("Trips", func(t *testing.T) { testTrips(t, newStore(t)) })
}

func testRooms(t *testing.T, s store.Store) {
	ctx := context.Background()
	room := models.Room{ID: "r1", City: "Busan", Theme: []string{"healing"}, TravelerCount: 3}
	require.NoError(t, s.CreateRoom(ctx, room))

	got, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, room, *got)

	_, err = s.GetRoom(ctx, "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testMembers(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := models.Member{ID: "a", RoomID: "r1", Nickname: "Ann"}
	b := models.Member{ID: "b", RoomID: "r1", Nickname: "Ben"}
	other := models.Member{ID: "c", RoomID: "r2", Nickname: "Cy"}
	for _, m := range []models.Member{a, b, other} {
		require.NoError(t, s.AddMember(ctx, m))
	}

	members, err := s.GetRoomMembers(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "a", members[0].ID)
	assert.Equal(t, "b", members[1].ID)

	a.Survey = &models.Survey{BudgetLevel: models.BudgetLow, Emotions: []string{"healing"}}
	a.SurveyCompleted = true
	require.NoError(t, s.UpdateMember(ctx, a))

	got, err := s.GetMember(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got.Survey)
	assert.Equal(t, models.BudgetLow, got.Survey.BudgetLevel)
	assert.True(t, got.SurveyCompleted)

	err = s.UpdateMember(ctx, models.Member{ID: "ghost", RoomID: "r1"})
	assert.True(t, errors.Is(err, store.ErrNotFound))

	empty, err := s.GetRoomMembers(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testPlans(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.GetPlanPackages(ctx, "r1")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	packages := []models.PlanPackage{
		{ID: "p1", RoomID: "r1", Name: "One", Days: []models.DayPlan{{Day: 1, Slots: []models.ActivitySlot{{ID: "s1", Title: "Spa"}}}}},
		{ID: "p2", RoomID: "r1", Name: "Two", FitScore: &models.PlanFitScore{GroupScore: 70}},
	}
	require.NoError(t, s.SetPlanPackages(ctx, "r1", packages))
	require.NoError(t, s.SetPlanPackages(ctx, "r1", packages[:1]))

	got, err := s.GetPlanPackages(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Spa", got[0].Days[0].Slots[0].Title)
}

func testVotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.GetVotes(ctx, "r1")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	cast := func(member, plan string) *models.PlanVotes {
		votes, err := s.UpdateVotes(ctx, "r1", func(v *models.PlanVotes) error {
			voting.CastVote(v, member, plan)
			return nil
		})
		require.NoError(t, err)
		return votes
	}
	cast("a", "p1")
	cast("b", "p2")
	votes := cast("a", "p2")
	assert.Equal(t, map[string]int{"p1": 0, "p2": 2}, votes.Tallies)
	assert.Equal(t, "p2", votes.WinnerPlanID)

	stored, err := s.GetVotes(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, votes, stored)

	boom := errors.New("boom")
	_, err = s.UpdateVotes(ctx, "r1", func(v *models.PlanVotes) error {
		voting.CastVote(v, "c", "p1")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	unchanged, err := s.GetVotes(ctx, "r1")
	require.NoError(t, err)
	assert.NotContains(t, unchanged.Voters, "c")
}

func testConcurrentVotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	const voters = 8
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			member := string(rune('a' + i))
			_, err := s.UpdateVotes(ctx, "r-race", func(v *models.PlanVotes) error {
				voting.CastVote(v, member, "p1")
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	applied := 0
	for err := range errs {
		if err == nil {
			applied++
			continue
		}
		assert.ErrorIs(t, err, store.ErrConflict)
	}

	votes, err := s.GetVotes(ctx, "r-race")
	require.NoError(t, err)
	assert.Equal(t, applied, votes.Tallies["p1"])
	assert.Len(t, votes.Voters, applied)
}

func testTrips(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.GetTripByRoom(ctx, "r1")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	trip := models.Trip{ID: "t1", RoomID: "r1", Status: models.TripActive, CurrentDay: 1, Photos: []string{}}
	require.NoError(t, s.CreateTrip(ctx, trip))

	byRoom, err := s.GetTripByRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "t1", byRoom.ID)

	trip.Status = models.TripCompleted
	trip.Report = &models.TripReport{TripID: "t1", Summary: "done"}
	require.NoError(t, s.UpdateTrip(ctx, trip))

	got, err := s.GetTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TripCompleted, got.Status)
	require.NotNil(t, got.Report)
	assert.Equal(t, "done", got.Report.Summary)

	err = s.UpdateTrip(ctx, models.Trip{ID: "ghost"})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
