package store

import (
	"context"
	"errors"

	"github.com/arnavshah/odysai-api-go/pkg/models"
)

// ErrNotFound is returned when a room, member, trip or plan set is missing
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an atomic update lost too many races
var ErrConflict = errors.New("concurrent update conflict")

// VoteMutator edits a room's vote record inside an atomic update
type VoteMutator func(votes *models.PlanVotes) error

// Store persists rooms, members, plans, votes and trips
type Store interface {
	CreateRoom(ctx context.Context, room models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)

	AddMember(ctx context.Context, member models.Member) error
	GetMember(ctx context.Context, id string) (*models.Member, error)
	GetRoomMembers(ctx context.Context, roomID string) ([]models.Member, error)
	UpdateMember(ctx context.Context, member models.Member) error

	SetPlanPackages(ctx context.Context, roomID string, packages []models.PlanPackage) error
	GetPlanPackages(ctx context.Context, roomID string) ([]models.PlanPackage, error)

	GetVotes(ctx context.Context, roomID string) (*models.PlanVotes, error)
	// UpdateVotes runs fn against the current record (empty if none) and
	// persists the result without interleaving other updates for the room.
	UpdateVotes(ctx context.Context, roomID string, fn VoteMutator) (*models.PlanVotes, error)

	CreateTrip(ctx context.Context, trip models.Trip) error
	GetTrip(ctx context.Context, id string) (*models.Trip, error)
	GetTripByRoom(ctx context.Context, roomID string) (*models.Trip, error)
	UpdateTrip(ctx context.Context, trip models.Trip) error

	Close() error
}
