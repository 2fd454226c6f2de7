package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/model"
)

// newTestDB returns a fresh in-memory database that is closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestProgrammer creates a programmer owned by a fresh user.
func createTestProgrammer(t *testing.T, db *DB, nickname string, avatar int) *model.Programmer {
	t.Helper()
	owner := ownerFor(t, db)
	p := &model.Programmer{Nickname: nickname, AvatarNumber: avatar, UserID: owner.ID}
	if err := db.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create test programmer: %v", err)
	}
	return p
}

// ownerFor returns the first user, creating one if the table is empty.
func ownerFor(t *testing.T, db *DB) *model.User {
	t.Helper()
	u, err := db.FindAnyUser(context.Background())
	if err == nil {
		return u
	}
	return createTestUser(t, db, "weaverryan")
}

func strPtr(s string) *string { return &s }

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateProgrammer(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "weaverryan")

	p := &model.Programmer{
		Nickname:     "ObjectOrienter",
		AvatarNumber: 5,
		TagLine:      strPtr("a test dev!"),
		UserID:       owner.ID,
	}

	if err := db.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p.ID == "" {
		t.Error("Create() did not set programmer.ID")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestCreateProgrammer_VerifyPersistence(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "weaverryan")

	original := &model.Programmer{
		Nickname:     "UnitTester",
		AvatarNumber: 3,
		TagLine:      strPtr("tests first"),
		PowerLevel:   7,
		UserID:       owner.ID,
	}
	if err := db.Create(context.Background(), original); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := db.FindByNickname(context.Background(), "UnitTester")
	if err != nil {
		t.Fatalf("FindByNickname() error = %v", err)
	}

	if found.ID != original.ID {
		t.Errorf("ID = %q, want %q", found.ID, original.ID)
	}
	if found.AvatarNumber != 3 {
		t.Errorf("AvatarNumber = %d, want 3", found.AvatarNumber)
	}
	if found.TagLine == nil || *found.TagLine != "tests first" {
		t.Errorf("TagLine = %v, want %q", found.TagLine, "tests first")
	}
	if found.PowerLevel != 7 {
		t.Errorf("PowerLevel = %d, want 7", found.PowerLevel)
	}
	if found.UserID != owner.ID {
		t.Errorf("UserID = %q, want %q", found.UserID, owner.ID)
	}
}

func TestCreateProgrammer_NullTagLine(t *testing.T) {
	db := newTestDB(t)
	createTestProgrammer(t, db, "Quiet", 1)

	found, err := db.FindByNickname(context.Background(), "Quiet")
	if err != nil {
		t.Fatalf("FindByNickname() error = %v", err)
	}
	if found.TagLine != nil {
		t.Errorf("TagLine = %q, want nil", *found.TagLine)
	}
}

func TestCreateProgrammer_DuplicateNickname(t *testing.T) {
	db := newTestDB(t)
	first := createTestProgrammer(t, db, "CowboyCoder", 5)

	dup := &model.Programmer{Nickname: "CowboyCoder", AvatarNumber: 2, UserID: first.UserID}
	err := db.Create(context.Background(), dup)
	if err == nil {
		t.Fatal("Create() should fail for a duplicate nickname")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}

	// The original row must be untouched.
	found, err := db.FindByNickname(context.Background(), "CowboyCoder")
	if err != nil {
		t.Fatalf("FindByNickname() error = %v", err)
	}
	if found.AvatarNumber != 5 {
		t.Errorf("AvatarNumber = %d, want 5 (original)", found.AvatarNumber)
	}
}

func TestCreateProgrammer_UnknownOwner(t *testing.T) {
	db := newTestDB(t)

	p := &model.Programmer{Nickname: "Orphan", AvatarNumber: 1, UserID: "no-such-user"}
	if err := db.Create(context.Background(), p); err == nil {
		t.Fatal("Create() should fail when the owner does not exist")
	}
}

// =========================================================================
// FIND TESTS
// =========================================================================

func TestFindByNickname_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.FindByNickname(context.Background(), "nobody")
	if err == nil {
		t.Fatal("FindByNickname() should have returned an error")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindByNickname() error = %v, want ErrNotFound", err)
	}
}

func TestFindAll_Empty(t *testing.T) {
	db := newTestDB(t)

	programmers, err := db.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if programmers == nil {
		t.Error("FindAll() returned nil, want empty slice")
	}
	if len(programmers) != 0 {
		t.Errorf("FindAll() returned %d programmers, want 0", len(programmers))
	}
}

func TestFindAll_InsertionOrder(t *testing.T) {
	db := newTestDB(t)

	names := []string{"UnitTester", "CowboyCoder", "Alpha", "Zed"}
	for _, n := range names {
		createTestProgrammer(t, db, n, 3)
	}

	programmers, err := db.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(programmers) != len(names) {
		t.Fatalf("FindAll() returned %d programmers, want %d", len(programmers), len(names))
	}
	for i, n := range names {
		if programmers[i].Nickname != n {
			t.Errorf("programmers[%d].Nickname = %q, want %q", i, programmers[i].Nickname, n)
		}
	}
}

func TestFindAll_OrderSurvivesDelete(t *testing.T) {
	db := newTestDB(t)
	createTestProgrammer(t, db, "first", 1)
	last := createTestProgrammer(t, db, "second", 1)

	if err := db.Delete(context.Background(), last.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	createTestProgrammer(t, db, "third", 1)

	programmers, err := db.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(programmers) != 2 || programmers[0].Nickname != "first" || programmers[1].Nickname != "third" {
		t.Errorf("FindAll() = %+v, want [first third]", programmers)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdateProgrammer(t *testing.T) {
	db := newTestDB(t)
	p := createTestProgrammer(t, db, "CowboyCoder", 5)

	p.AvatarNumber = 2
	p.TagLine = strPtr("bar")
	if err := db.Update(context.Background(), p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.FindByNickname(context.Background(), "CowboyCoder")
	if err != nil {
		t.Fatalf("FindByNickname() error = %v", err)
	}
	if found.AvatarNumber != 2 {
		t.Errorf("AvatarNumber = %d, want 2", found.AvatarNumber)
	}
	if found.TagLine == nil || *found.TagLine != "bar" {
		t.Errorf("TagLine = %v, want bar", found.TagLine)
	}
}

func TestUpdateProgrammer_NeverRewritesNickname(t *testing.T) {
	db := newTestDB(t)
	p := createTestProgrammer(t, db, "CowboyCoder", 5)

	p.Nickname = "CowgirlCoder"
	if err := db.Update(context.Background(), p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := db.FindByNickname(context.Background(), "CowboyCoder"); err != nil {
		t.Errorf("original nickname should still resolve: %v", err)
	}
	if _, err := db.FindByNickname(context.Background(), "CowgirlCoder"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("new nickname should not exist, got err = %v", err)
	}
}

func TestUpdateProgrammer_ClearTagLine(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "weaverryan")
	p := &model.Programmer{Nickname: "Talker", AvatarNumber: 1, TagLine: strPtr("hi"), UserID: owner.ID}
	if err := db.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p.TagLine = nil
	if err := db.Update(context.Background(), p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, _ := db.FindByNickname(context.Background(), "Talker")
	if found.TagLine != nil {
		t.Errorf("TagLine = %q, want nil", *found.TagLine)
	}
}

func TestUpdateProgrammer_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Programmer{ID: "missing", Nickname: "ghost", AvatarNumber: 1})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE / PURGE TESTS
// =========================================================================

func TestDeleteProgrammer(t *testing.T) {
	db := newTestDB(t)
	p := createTestProgrammer(t, db, "UnitTester", 3)

	if err := db.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.FindByNickname(context.Background(), "UnitTester")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindByNickname() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteProgrammer_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestPurge(t *testing.T) {
	db := newTestDB(t)
	createTestProgrammer(t, db, "UnitTester", 3)

	if err := db.Purge(context.Background()); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}

	programmers, _ := db.FindAll(context.Background())
	if len(programmers) != 0 {
		t.Errorf("FindAll() after purge returned %d programmers, want 0", len(programmers))
	}
	if _, err := db.FindAnyUser(context.Background()); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindAnyUser() after purge error = %v, want ErrNotFound", err)
	}
}
