package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/arnavshah/odysai-api-go/pkg/models"
	"github.com/arnavshah/odysai-api-go/pkg/store"
)

// RoomRecord represents the rooms table
type RoomRecord struct {
	ID   string         `gorm:"primaryKey"`
	Data datatypes.JSON `gorm:"not null"`
}

// MemberRecord represents the members table
type MemberRecord struct {
	ID       string         `gorm:"primaryKey"`
	RoomID   string         `gorm:"index;not null"`
	JoinedAt int64          `gorm:"autoCreateTime:nano;index"`
	Data     datatypes.JSON `gorm:"not null"`
}

// PlanSetRecord holds a room's plan packages
type PlanSetRecord struct {
	RoomID string         `gorm:"primaryKey"`
	Data   datatypes.JSON `gorm:"not null"`
}

// VoteRecord holds a room's vote tallies
type VoteRecord struct {
	RoomID string         `gorm:"primaryKey"`
	Data   datatypes.JSON `gorm:"not null"`
}

// TripRecord represents the trips table
type TripRecord struct {
	ID        string         `gorm:"primaryKey"`
	RoomID    string         `gorm:"index;not null"`
	StartedAt int64          `gorm:"autoCreateTime:nano"`
	Data      datatypes.JSON `gorm:"not null"`
}

// Options selects the database to open
type Options struct {
	// DSN opens Postgres when set
	DSN string
	// Path is the SQLite file used when DSN is empty
	Path string
}

// Store implements store.Store on top of gorm
type Store struct {
	DB *gorm.DB
}

// InitDB opens the database connection and migrates the schema
func InitDB(opts Options) (*Store, error) {
	var db *gorm.DB
	var err error

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if opts.DSN != "" {
		cfg.PrepareStmt = false
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true,
		}), cfg)
	} else {
		path := opts.Path
		if path == "" {
			path = "odysai.db"
		}
		db, err = gorm.Open(sqlite.Open(path), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// SQLite allows one writer; a single connection serializes transactions.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&RoomRecord{}, &MemberRecord{}, &PlanSetRecord{}, &VoteRecord{}, &TripRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) CreateRoom(ctx context.Context, room models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Create(&RoomRecord{ID: room.ID, Data: data}).Error
}

func (s *Store) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var rec RoomRecord
	if err := first(s.DB.WithContext(ctx), &rec, "id = ?", id); err != nil {
		return nil, err
	}
	var room models.Room
	return &room, json.Unmarshal(rec.Data, &room)
}

func (s *Store) AddMember(ctx context.Context, member models.Member) error {
	data, err := json.Marshal(member)
	if err != nil {
		return err
	}
	return upsert(s.DB.WithContext(ctx), "id", &MemberRecord{ID: member.ID, RoomID: member.RoomID, Data: data})
}

func (s *Store) GetMember(ctx context.Context, id string) (*models.Member, error) {
	var rec MemberRecord
	if err := first(s.DB.WithContext(ctx), &rec, "id = ?", id); err != nil {
		return nil, err
	}
	var member models.Member
	return &member, json.Unmarshal(rec.Data, &member)
}

// GetRoomMembers returns members in join order
func (s *Store) GetRoomMembers(ctx context.Context, roomID string) ([]models.Member, error) {
	var recs []MemberRecord
	if err := s.DB.WithContext(ctx).Where("room_id = ?", roomID).Order("joined_at asc, id asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	members := make([]models.Member, 0, len(recs))
	for _, rec := range recs {
		var m models.Member
		if err := json.Unmarshal(rec.Data, &m); err != nil {
			return nil, fmt.Errorf("decode member %s: %w", rec.ID, err)
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *Store) UpdateMember(ctx context.Context, member models.Member) error {
	data, err := json.Marshal(member)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Model(&MemberRecord{}).Where("id = ?", member.ID).Update("data", datatypes.JSON(data))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetPlanPackages(ctx context.Context, roomID string, packages []models.PlanPackage) error {
	data, err := json.Marshal(packages)
	if err != nil {
		return err
	}
	return upsert(s.DB.WithContext(ctx), "room_id", &PlanSetRecord{RoomID: roomID, Data: data})
}

func (s *Store) GetPlanPackages(ctx context.Context, roomID string) ([]models.PlanPackage, error) {
	var rec PlanSetRecord
	if err := first(s.DB.WithContext(ctx), &rec, "room_id = ?", roomID); err != nil {
		return nil, err
	}
	var packages []models.PlanPackage
	return packages, json.Unmarshal(rec.Data, &packages)
}

func (s *Store) GetVotes(ctx context.Context, roomID string) (*models.PlanVotes, error) {
	var rec VoteRecord
	if err := first(s.DB.WithContext(ctx), &rec, "room_id = ?", roomID); err != nil {
		return nil, err
	}
	votes := models.NewPlanVotes()
	return votes, json.Unmarshal(rec.Data, votes)
}

// UpdateVotes runs fn inside a transaction, locking the row on Postgres
func (s *Store) UpdateVotes(ctx context.Context, roomID string, fn store.VoteMutator) (*models.PlanVotes, error) {
	votes := models.NewPlanVotes()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			// FOR UPDATE cannot lock a missing row, so seed an empty record first
			empty, err := json.Marshal(models.NewPlanVotes())
			if err != nil {
				return err
			}
			seed := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "room_id"}}, DoNothing: true})
			if err := seed.Create(&VoteRecord{RoomID: roomID, Data: empty}).Error; err != nil {
				return err
			}
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var rec VoteRecord
		err := first(q, &rec, "room_id = ?", roomID)
		switch {
		case err == nil:
			if err := json.Unmarshal(rec.Data, votes); err != nil {
				return fmt.Errorf("decode votes: %w", err)
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		if err := fn(votes); err != nil {
			return err
		}
		data, err := json.Marshal(votes)
		if err != nil {
			return err
		}
		return upsert(tx, "room_id", &VoteRecord{RoomID: roomID, Data: data})
	})
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (s *Store) CreateTrip(ctx context.Context, trip models.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Create(&TripRecord{ID: trip.ID, RoomID: trip.RoomID, Data: data}).Error
}

func (s *Store) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	var rec TripRecord
	if err := first(s.DB.WithContext(ctx), &rec, "id = ?", id); err != nil {
		return nil, err
	}
	var trip models.Trip
	return &trip, json.Unmarshal(rec.Data, &trip)
}

// GetTripByRoom returns the room's most recently started trip
func (s *Store) GetTripByRoom(ctx context.Context, roomID string) (*models.Trip, error) {
	var rec TripRecord
	if err := first(s.DB.WithContext(ctx).Order("started_at desc"), &rec, "room_id = ?", roomID); err != nil {
		return nil, err
	}
	var trip models.Trip
	return &trip, json.Unmarshal(rec.Data, &trip)
}

func (s *Store) UpdateTrip(ctx context.Context, trip models.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Model(&TripRecord{}).Where("id = ?", trip.ID).Update("data", datatypes.JSON(data))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func first(db *gorm.DB, dest any, query string, args ...any) error {
	err := db.Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

// upsert uses OnConflict for a single-query write (supported by both Postgres and SQLite)
func upsert(db *gorm.DB, key string, rec any) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: key}},
		DoUpdates: clause.AssignmentColumns([]string{"data"}),
	}).Create(rec).Error
}
