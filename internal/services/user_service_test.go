package services

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lessonlab/lessonlab-be/internal/database"
	"github.com/lessonlab/lessonlab-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// seedUser inserts an account directly, bypassing the bcrypt work that
// CreateUser does, for tests that only need a row to reference.
func seedUser(t *testing.T, db *sql.DB, email string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec(
		"INSERT INTO users (id, email, password_hash, first_name, last_name, join_date) VALUES (?, ?, ?, ?, ?, ?)",
		id, email, "x", "Test", "User", time.Now().UTC())
	require.NoError(t, err)
	return id
}

func TestCreateUser(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	user, err := svc.CreateUser("a@x.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "Lovelace", user.LastName)
	assert.False(t, user.JoinDate.IsZero())
	assert.Empty(t, user.LessonIDs)
	assert.Empty(t, user.BookmarkIDs)

	// The projection has no password field to leak.
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	_, err := svc.CreateUser("a@x.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)

	_, err = svc.CreateUser("a@x.com", "password2", "Grace", "Hopper")
	assert.ErrorIs(t, err, ErrConflict)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", "a@x.com").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewUserService(testDB(t))

	cases := []struct {
		name                                 string
		email, password, firstName, lastName string
	}{
		{"missing email", "", "password1", "Ada", "Lovelace"},
		{"malformed email", "not-an-email", "password1", "Ada", "Lovelace"},
		{"missing first name", "a@x.com", "password1", "", "Lovelace"},
		{"missing last name", "a@x.com", "password1", "Ada", ""},
		{"missing password", "a@x.com", "", "Ada", "Lovelace"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(tc.email, tc.password, tc.firstName, tc.lastName)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	_, err := svc.CreateUser("a@x.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)

	assert.True(t, svc.VerifyPassword("a@x.com", "password1"))
	assert.False(t, svc.VerifyPassword("a@x.com", "wrong"))
	assert.False(t, svc.VerifyPassword("nobody@x.com", "password1"))
	assert.False(t, svc.VerifyPassword("a@x.com", ""))
}

func TestVerifyPasswordFailsClosed(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	_, err := svc.CreateUser("a@x.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)

	// A dead store must read as "no", never as an error.
	require.NoError(t, db.Close())
	assert.False(t, svc.VerifyPassword("a@x.com", "password1"))
}

func TestAuthenticateUserUniformFailure(t *testing.T) {
	svc := NewUserService(testDB(t))
	_, err := svc.CreateUser("a@x.com", "password1", "Ada", "Lovelace")
	require.NoError(t, err)

	_, wrongPassword := svc.AuthenticateUser("a@x.com", "wrong")
	_, unknownEmail := svc.AuthenticateUser("nobody@x.com", "password1")
	assert.ErrorIs(t, wrongPassword, ErrBadCredentials)
	assert.ErrorIs(t, unknownEmail, ErrBadCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	user, err := svc.AuthenticateUser("a@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestGetUserByIDNotFound(t *testing.T) {
	svc := NewUserService(testDB(t))
	_, err := svc.GetUserByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	id := seedUser(t, db, "a@x.com")

	desc := "Maths teacher"
	location := "Lyon"
	grades := []string{"SIXIEME", "CINQUIEME"}
	ok, err := svc.UpdateProfile(id, models.ProfilePatch{
		Description: &desc,
		Location:    &location,
		Grades:      &grades,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	user, err := svc.GetUserByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Maths teacher", user.Description)
	assert.Equal(t, "Lyon", user.Location)
	assert.Equal(t, grades, user.Grades)
	// Untouched fields survive.
	assert.Equal(t, "Test", user.FirstName)
}

func TestUpdateProfileEdgeCases(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	id := seedUser(t, db, "a@x.com")

	// Empty patch is a no-op.
	ok, err := svc.UpdateProfile(id, models.ProfilePatch{})
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown user.
	name := "Ada"
	ok, err = svc.UpdateProfile("missing", models.ProfilePatch{FirstName: &name})
	require.NoError(t, err)
	assert.False(t, ok)

	// Names cannot be blanked out.
	empty := ""
	_, err = svc.UpdateProfile(id, models.ProfilePatch{FirstName: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	// Grades are validated.
	bad := []string{"KINDERGARTEN"}
	_, err = svc.UpdateProfile(id, models.ProfilePatch{Grades: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookmarkToggleIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	lessons := NewLessonService(db)

	userID := seedUser(t, db, "a@x.com")
	authorID := seedUser(t, db, "b@x.com")
	published := false
	lesson, err := lessons.CreateLesson(authorID, models.LessonCreate{Title: "Fractions", IsDraft: &published})
	require.NoError(t, err)

	require.NoError(t, svc.AddBookmark(userID, lesson.ID))
	require.NoError(t, svc.AddBookmark(userID, lesson.ID))

	user, err := svc.GetUserByID(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{lesson.ID}, user.BookmarkIDs)

	got, err := lessons.GetLessonByID(lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BookmarkCount)

	require.NoError(t, svc.RemoveBookmark(userID, lesson.ID))
	require.NoError(t, svc.RemoveBookmark(userID, lesson.ID))

	user, err = svc.GetUserByID(userID)
	require.NoError(t, err)
	assert.Empty(t, user.BookmarkIDs)

	got, err = lessons.GetLessonByID(lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.BookmarkCount)
}

func TestBookmarkUnknownLesson(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	userID := seedUser(t, db, "a@x.com")

	assert.ErrorIs(t, svc.AddBookmark(userID, "missing"), ErrNotFound)
	assert.ErrorIs(t, svc.RemoveBookmark(userID, "missing"), ErrNotFound)
}

func TestReconcileBookmarkCounts(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	lessons := NewLessonService(db)

	userID := seedUser(t, db, "a@x.com")
	lesson, err := lessons.CreateLesson(userID, models.LessonCreate{Title: "Fractions"})
	require.NoError(t, err)
	require.NoError(t, svc.AddBookmark(userID, lesson.ID))

	// Simulate counter drift; the reverse index stays authoritative.
	_, err = db.Exec("UPDATE lessons SET bookmark_count = 42 WHERE id = ?", lesson.ID)
	require.NoError(t, err)

	drifted, err := svc.ReconcileBookmarkCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), drifted)

	got, err := lessons.GetLessonByID(lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BookmarkCount)

	// Nothing left to fix on a second pass.
	drifted, err = svc.ReconcileBookmarkCounts()
	require.NoError(t, err)
	assert.Zero(t, drifted)
}
