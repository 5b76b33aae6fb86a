package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/arnavshah/odysai-api-go/pkg/models"
)

// Memory is a process-local Store. Values are deep-copied through JSON so
// callers never share state with the store.
type Memory struct {
	mu          sync.Mutex
	rooms       map[string][]byte
	members     map[string][]byte
	roomMembers map[string][]string
	plans       map[string][]byte
	votes       map[string][]byte
	trips       map[string][]byte
	roomTrip    map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		rooms:       make(map[string][]byte),
		members:     make(map[string][]byte),
		roomMembers: make(map[string][]string),
		plans:       make(map[string][]byte),
		votes:       make(map[string][]byte),
		trips:       make(map[string][]byte),
		roomTrip:    make(map[string]string),
	}
}

func (m *Memory) CreateRoom(_ context.Context, room models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return put(m.rooms, room.ID, room)
}

func (m *Memory) GetRoom(_ context.Context, id string) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var room models.Room
	if err := get(m.rooms, id, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (m *Memory) AddMember(_ context.Context, member models.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.members[member.ID]; !exists {
		m.roomMembers[member.RoomID] = append(m.roomMembers[member.RoomID], member.ID)
	}
	return put(m.members, member.ID, member)
}

func (m *Memory) GetMember(_ context.Context, id string) (*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var member models.Member
	if err := get(m.members, id, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// GetRoomMembers returns members in join order
func (m *Memory) GetRoomMembers(_ context.Context, roomID string) ([]models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Member, 0, len(m.roomMembers[roomID]))
	for _, id := range m.roomMembers[roomID] {
		var member models.Member
		if err := get(m.members, id, &member); err != nil {
			continue
		}
		out = append(out, member)
	}
	return out, nil
}

func (m *Memory) UpdateMember(_ context.Context, member models.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.members[member.ID]; !ok {
		return ErrNotFound
	}
	return put(m.members, member.ID, member)
}

func (m *Memory) SetPlanPackages(_ context.Context, roomID string, packages []models.PlanPackage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return put(m.plans, roomID, packages)
}

func (m *Memory) GetPlanPackages(_ context.Context, roomID string) ([]models.PlanPackage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var packages []models.PlanPackage
	if err := get(m.plans, roomID, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

func (m *Memory) GetVotes(_ context.Context, roomID string) (*models.PlanVotes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	votes := models.NewPlanVotes()
	if err := get(m.votes, roomID, votes); err != nil {
		return nil, err
	}
	return votes, nil
}

func (m *Memory) UpdateVotes(_ context.Context, roomID string, fn VoteMutator) (*models.PlanVotes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	votes := models.NewPlanVotes()
	if err := get(m.votes, roomID, votes); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := fn(votes); err != nil {
		return nil, err
	}
	if err := put(m.votes, roomID, votes); err != nil {
		return nil, err
	}
	return votes, nil
}

func (m *Memory) CreateTrip(_ context.Context, trip models.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roomTrip[trip.RoomID] = trip.ID
	return put(m.trips, trip.ID, trip)
}

func (m *Memory) GetTrip(_ context.Context, id string) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var trip models.Trip
	if err := get(m.trips, id, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (m *Memory) GetTripByRoom(ctx context.Context, roomID string) (*models.Trip, error) {
	m.mu.Lock()
	id, ok := m.roomTrip[roomID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetTrip(ctx, id)
}

func (m *Memory) UpdateTrip(_ context.Context, trip models.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return ErrNotFound
	}
	return put(m.trips, trip.ID, trip)
}

func (m *Memory) Close() error { return nil }

func put(table map[string][]byte, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	table[key] = data
	return nil
}

func get(table map[string][]byte, key string, v any) error {
	data, ok := table[key]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, v)
}
