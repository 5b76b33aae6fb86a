package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arnavshah/odysai-api-go/pkg/store"
	"github.com/arnavshah/odysai-api-go/pkg/store/storetest"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := InitDB(Options{Path: filepath.Join(t.TempDir(), "odysai.db")})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestInitDB_Migrates(t *testing.T) {
	s, err := InitDB(Options{Path: filepath.Join(t.TempDir(), "odysai.db")})
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []any{&RoomRecord{}, &MemberRecord{}, &PlanSetRecord{}, &VoteRecord{}, &TripRecord{}} {
		require.True(t, s.DB.Migrator().HasTable(table))
	}
}

// Runs against a scratch Postgres database when POSTGRES_TEST_URL is set.
// Tables are emptied before each subtest.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_URL")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := InitDB(Options{DSN: dsn})
		require.NoError(t, err)
		for _, table := range []any{&RoomRecord{}, &MemberRecord{}, &PlanSetRecord{}, &VoteRecord{}, &TripRecord{}} {
			require.NoError(t, s.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
