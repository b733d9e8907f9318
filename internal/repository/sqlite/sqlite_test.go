package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/fashionpolice/fashion-police/internal/model"
)

// newTestDB returns a fresh in-memory database, closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, username, gender string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Gender:       gender,
		Age:          30,
		Height:       70,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestPost creates a post in category 1 and fails the test if it errors.
func createTestPost(t *testing.T, db *DB, ownerID int64, restriction string, items ...string) *model.StoredPost {
	t.Helper()
	post := &model.StoredPost{
		OwnerID:           ownerID,
		CategoryID:        1,
		Description:       fmt.Sprintf("post by %d", ownerID),
		Image:             []byte{0xff, 0xd8, 0xff},
		GenderRestriction: restriction,
		ClothingItems:     items,
	}
	if err := db.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

// =========================================================================
// SETUP TESTS
// =========================================================================

func TestNew_SeedsCategories(t *testing.T) {
	db := newTestDB(t)

	categories, err := db.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != len(model.DefaultCategories) {
		t.Fatalf("got %d categories, want %d", len(categories), len(model.DefaultCategories))
	}
	for i, c := range categories {
		if c != model.DefaultCategories[i] {
			t.Errorf("category %d = %+v, want %+v", i, c, model.DefaultCategories[i])
		}
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
	if err := db.seedCategories(context.Background()); err != nil {
		t.Fatalf("second seedCategories() error = %v", err)
	}

	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		t.Fatalf("counting categories: %v", err)
	}
	if count != len(model.DefaultCategories) {
		t.Errorf("categories after reseed = %d, want %d", count, len(model.DefaultCategories))
	}
}

func TestPlaceholders(t *testing.T) {
	cases := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range cases {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}
