package store

import (
	"context"
	"time"

	"github.com/arnavshah/odysai-api-go/pkg/metrics"
	"github.com/arnavshah/odysai-api-go/pkg/models"
)

// Instrumented records the latency of every call on the wrapped store
type Instrumented struct {
	next    Store
	backend string
}

func NewInstrumented(next Store, backend string) *Instrumented {
	return &Instrumented{next: next, backend: backend}
}

func (s *Instrumented) CreateRoom(ctx context.Context, room models.Room) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "create_room", start, err) }(time.Now())
	return s.next.CreateRoom(ctx, room)
}

func (s *Instrumented) GetRoom(ctx context.Context, id string) (_ *models.Room, err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "get_room", start, err) }(time.Now())
	return s.next.GetRoom(ctx, id)
}

func (s *Instrumented) AddMember(ctx context.Context, member models.Member) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "add_member", start, err) }(time.Now())
	return s.next.AddMember(ctx, member)
}

func (s *Instrumented) GetMember(ctx context.Context, id string) (_ *models.Member, err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "get_member", start, err) }(time.Now())
	return s.next.GetMember(ctx, id)
}

func (s *Instrumented) GetRoomMembers(ctx context.Context, roomID string) (_ []models.Member, err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "get_room_members", start, err) }(time.Now())
	return s.next.GetRoomMembers(ctx, roomID)
}

func (s *Instrumented) UpdateMember(ctx context.Context, member models.Member) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "update_member", start, err) }(time.Now())
	return s.next.UpdateMember(ctx, member)
}

func (s *Instrumented) SetPlanPackages(ctx context.Context, roomID string, packages []models.PlanPackage) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "set_plan_packages", start, err) }(time.Now())
	return s.next.SetPlanPackages(ctx, roomID, packages)
}

func (s *Instrumented) GetPlanPackages(ctx context.Context, roomID string) (_ []models.PlanPackage, err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "get_plan_packages", start, err) }(time.Now())
	return s.next.GetPlanPackages(ctx, roomID)
}

func (s *Instrumented) GetVotes(ctx context.Context, roomID string) (_ *models.PlanVotes, err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "get_votes", start, err) }(time.Now())
	return s.next.GetVotes(ctx, roomID)
}

func (s *Instrumented) UpdateVotes(ctx context.Context, roomID string, fn VoteMutator) (_ *models.PlanVotes, err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "update_votes", start, err) }(time.Now())
	return s.next.UpdateVotes(ctx, roomID, fn)
}

func (s *Instrumented) CreateTrip(ctx context.Context, trip models.Trip) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "create_trip", start, err) }(time.Now())
	return s.next.CreateTrip(ctx, trip)
}

func (s *Instrumented) GetTrip(ctx context.Context, id string) (_ *models.Trip, err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "get_trip", start, err) }(time.Now())
	return s.next.GetTrip(ctx, id)
}

func (s *Instrumented) GetTripByRoom(ctx context.Context, roomID string) (_ *models.Trip, err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "get_trip_by_room", start, err) }(time.Now())
	return s.next.GetTripByRoom(ctx, roomID)
}

func (s *Instrumented) UpdateTrip(ctx context.Context, trip models.Trip) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(s.backend, "update_trip", start, err) }(time.Now())
	return s.next.UpdateTrip(ctx, trip)
}

func (s *Instrumented) Close() error { return s.next.Close() }
