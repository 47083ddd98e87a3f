package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/pkg/database"
)

func setupTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t testing.TB, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t testing.TB, db *gorm.DB, userID, placeID int64, n int) *model.Post {
	t.Helper()
	p := &model.Post{
		UrlsafeID: fmt.Sprintf("p-%d-%d", userID, n),
		UserID:    userID,
		PlaceID:   placeID,
		Content:   fmt.Sprintf("post %d", n),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
