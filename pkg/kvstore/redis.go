package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/arnavshah/odysai-api-go/pkg/models"
	"github.com/arnavshah/odysai-api-go/pkg/store"
)

// DefaultVoteRetries bounds optimistic retries of a vote update
const DefaultVoteRetries = 5

// RedisStore implements store.Store on a Redis keyspace:
//
//	room:{id}            room JSON
//	room:{id}:members    list of member ids in join order
//	member:{id}          member JSON
//	room:{id}:plans      plan packages JSON
//	room:{id}:votes      vote record JSON
//	room:{id}:trip       id of the room's trip
//	trip:{id}            trip JSON
type RedisStore struct {
	client  *redis.Client
	retries int
}

// NewRedis wraps an existing client
func NewRedis(client *redis.Client, retries int) *RedisStore {
	if retries <= 0 {
		retries = DefaultVoteRetries
	}
	return &RedisStore{client: client, retries: retries}
}

// Open parses a redis:// URL and pings the server
func Open(ctx context.Context, url string, retries int) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(client, retries), nil
}

func roomKey(id string) string        { return "room:" + id }
func roomMembersKey(id string) string { return "room:" + id + ":members" }
func memberKey(id string) string      { return "member:" + id }
func plansKey(roomID string) string   { return "room:" + roomID + ":plans" }
func votesKey(roomID string) string   { return "room:" + roomID + ":votes" }
func roomTripKey(roomID string) string {
	return "room:" + roomID + ":trip"
}
func tripKey(id string) string { return "trip:" + id }

func (s *RedisStore) CreateRoom(ctx context.Context, room models.Room) error {
	return s.setJSON(ctx, roomKey(room.ID), room)
}

func (s *RedisStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := s.getJSON(ctx, roomKey(id), &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *RedisStore) AddMember(ctx context.Context, member models.Member) error {
	data, err := json.Marshal(member)
	if err != nil {
		return err
	}
	existed, err := s.client.Exists(ctx, memberKey(member.ID)).Result()
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, memberKey(member.ID), data, 0)
		if existed == 0 {
			pipe.RPush(ctx, roomMembersKey(member.RoomID), member.ID)
		}
		return nil
	})
	return err
}

func (s *RedisStore) GetMember(ctx context.Context, id string) (*models.Member, error) {
	var member models.Member
	if err := s.getJSON(ctx, memberKey(id), &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *RedisStore) GetRoomMembers(ctx context.Context, roomID string) ([]models.Member, error) {
	ids, err := s.client.LRange(ctx, roomMembersKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	members := make([]models.Member, 0, len(ids))
	if len(ids) == 0 {
		return members, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = memberKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var m models.Member
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("decode member %s: %w", ids[i], err)
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *RedisStore) UpdateMember(ctx context.Context, member models.Member) error {
	data, err := json.Marshal(member)
	if err != nil {
		return err
	}
	ok, err := s.client.SetXX(ctx, memberKey(member.ID), data, redis.KeepTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (s *RedisStore) SetPlanPackages(ctx context.Context, roomID string, packages []models.PlanPackage) error {
	return s.setJSON(ctx, plansKey(roomID), packages)
}

func (s *RedisStore) GetPlanPackages(ctx context.Context, roomID string) ([]models.PlanPackage, error) {
	var packages []models.PlanPackage
	if err := s.getJSON(ctx, plansKey(roomID), &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

func (s *RedisStore) GetVotes(ctx context.Context, roomID string) (*models.PlanVotes, error) {
	votes := models.NewPlanVotes()
	if err := s.getJSON(ctx, votesKey(roomID), votes); err != nil {
		return nil, err
	}
	return votes, nil
}

// UpdateVotes watches the room's vote key and retries when another writer
// changes it between read and write
func (s *RedisStore) UpdateVotes(ctx context.Context, roomID string, fn store.VoteMutator) (*models.PlanVotes, error) {
	key := votesKey(roomID)
	var result *models.PlanVotes

	txf := func(tx *redis.Tx) error {
		votes := models.NewPlanVotes()
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if err := json.Unmarshal(raw, votes); err != nil {
				return fmt.Errorf("decode votes: %w", err)
			}
		case !errors.Is(err, redis.Nil):
			return err
		}

		if err := fn(votes); err != nil {
			return err
		}
		data, err := json.Marshal(votes)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			result = votes
		}
		return err
	}

	for i := 0; i < s.retries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, store.ErrConflict
}

func (s *RedisStore) CreateTrip(ctx context.Context, trip models.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tripKey(trip.ID), data, 0)
		pipe.Set(ctx, roomTripKey(trip.RoomID), trip.ID, 0)
		return nil
	})
	return err
}

func (s *RedisStore) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	if err := s.getJSON(ctx, tripKey(id), &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (s *RedisStore) GetTripByRoom(ctx context.Context, roomID string) (*models.Trip, error) {
	id, err := s.client.Get(ctx, roomTripKey(roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetTrip(ctx, id)
}

func (s *RedisStore) UpdateTrip(ctx context.Context, trip models.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	ok, err := s.client.SetXX(ctx, tripKey(trip.ID), data, redis.KeepTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
