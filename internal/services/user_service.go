package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lessonlab/lessonlab-be/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed for every stored hash.
const bcryptCost = 13

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(email, password, firstName, lastName string) (models.PublicUser, error)
	GetUserByID(id string) (models.PublicUser, error)
	GetUserByEmail(email string) (models.PublicUser, error)
	GetAllUsers() ([]models.PublicUser, error)
	VerifyPassword(email, password string) bool
	AuthenticateUser(email, password string) (models.PublicUser, error)
	UpdateProfile(id string, patch models.ProfilePatch) (bool, error)
	AddBookmark(userID, lessonID string) error
	RemoveBookmark(userID, lessonID string) error
	ReconcileBookmarkCounts() (int64, error)
}

// UserService provides account management over the user store. It is the
// only code that ever touches password hashes.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// CreateUser registers a new account, hashing the password before it is
// persisted. The unique index on email backstops the duplicate check against
// concurrent signups.
func (s *UserService) CreateUser(email, password, firstName, lastName string) (models.PublicUser, error) {
	if email == "" || !strings.Contains(email, "@") || password == "" || firstName == "" || lastName == "" {
		return models.PublicUser{}, ErrValidation
	}

	var exists int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&exists)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("checking email: %w", err)
	}
	if exists > 0 {
		return models.PublicUser{}, ErrConflict
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    firstName,
		LastName:     lastName,
		JoinDate:     time.Now().UTC(),
	}

	_, err = s.db.Exec(
		"INSERT INTO users (id, email, password_hash, first_name, last_name, join_date) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.JoinDate,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			// Lost the race against a concurrent signup with the same email.
			return models.PublicUser{}, ErrConflict
		}
		return models.PublicUser{}, fmt.Errorf("inserting user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Registered new user")
	return user.Public(nil, nil, nil), nil
}

// GetUserByID retrieves a single user by their id.
func (s *UserService) GetUserByID(id string) (models.PublicUser, error) {
	return s.getUser("id = ?", id)
}

// GetUserByEmail retrieves a single user by their email.
func (s *UserService) GetUserByEmail(email string) (models.PublicUser, error) {
	return s.getUser("email = ?", email)
}

func (s *UserService) getUser(where string, arg any) (models.PublicUser, error) {
	row := s.db.QueryRow(
		"SELECT id, email, first_name, last_name, description, location, join_date, grades_json, subjects_json, comment_ids_json FROM users WHERE "+where, arg)
	user, commentIDs, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.PublicUser{}, ErrNotFound
		}
		return models.PublicUser{}, err
	}

	lessonIDs, bookmarkIDs, err := s.backRefs(user.ID)
	if err != nil {
		return models.PublicUser{}, err
	}
	return user.Public(lessonIDs, bookmarkIDs, commentIDs), nil
}

// GetAllUsers retrieves the public projection of every registered user.
func (s *UserService) GetAllUsers() ([]models.PublicUser, error) {
	rows, err := s.db.Query(
		"SELECT id, email, first_name, last_name, description, location, join_date, grades_json, subjects_json, comment_ids_json FROM users ORDER BY join_date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.PublicUser{}
	for rows.Next() {
		user, commentIDs, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		lessonIDs, bookmarkIDs, err := s.backRefs(user.ID)
		if err != nil {
			return nil, err
		}
		users = append(users, user.Public(lessonIDs, bookmarkIDs, commentIDs))
	}
	return users, rows.Err()
}

// VerifyPassword checks credentials against the stored hash. It fails
// closed: any store error, missing record, or missing hash reads as false.
func (s *UserService) VerifyPassword(email, password string) bool {
	if email == "" || password == "" {
		return false
	}
	var hash string
	err := s.db.QueryRow("SELECT password_hash FROM users WHERE email = ?", email).Scan(&hash)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Warn().Err(err).Msg("Could not reach user store during password check")
		}
		return false
	}
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AuthenticateUser verifies a user's credentials. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) AuthenticateUser(email, password string) (models.PublicUser, error) {
	if !s.VerifyPassword(email, password) {
		return models.PublicUser{}, ErrBadCredentials
	}
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return models.PublicUser{}, ErrBadCredentials
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's own profile. The
// patch type carries no email or password field, so neither can change here.
// Returns false when the patch is empty or the user does not exist.
func (s *UserService) UpdateProfile(id string, patch models.ProfilePatch) (bool, error) {
	sets := []string{}
	args := []any{}
	appendSet := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.FirstName != nil {
		if *patch.FirstName == "" {
			return false, ErrValidation
		}
		appendSet("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		if *patch.LastName == "" {
			return false, ErrValidation
		}
		appendSet("last_name", *patch.LastName)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Location != nil {
		appendSet("location", *patch.Location)
	}
	if patch.Grades != nil {
		for _, g := range *patch.Grades {
			if !models.ValidGrade(g) {
				return false, fmt.Errorf("%w: unknown grade %q", ErrValidation, g)
			}
		}
		appendSet("grades_json", marshalList(*patch.Grades))
	}
	if patch.Subjects != nil {
		for _, sub := range *patch.Subjects {
			if !models.ValidSubject(sub) {
				return false, fmt.Errorf("%w: unknown subject %q", ErrValidation, sub)
			}
		}
		appendSet("subjects_json", marshalList(*patch.Subjects))
	}

	if len(sets) == 0 {
		return false, nil
	}

	args = append(args, id)
	res, err := s.db.Exec("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("updating profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AddBookmark records the lesson in the user's bookmark set and bumps the
// lesson's counter in the same transaction. Calling it again for the same
// pair is a no-op.
func (s *UserService) AddBookmark(userID, lessonID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(1) FROM lessons WHERE id = ?", lessonID).Scan(&exists); err != nil {
		return fmt.Errorf("checking lesson: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	res, err := tx.Exec("INSERT OR IGNORE INTO bookmarks (user_id, lesson_id) VALUES (?, ?)", userID, lessonID)
	if err != nil {
		return fmt.Errorf("inserting bookmark: %w", err)
	}
	added, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if added > 0 {
		if _, err := tx.Exec("UPDATE lessons SET bookmark_count = bookmark_count + 1 WHERE id = ?", lessonID); err != nil {
			return fmt.Errorf("bumping bookmark count: %w", err)
		}
	}
	return tx.Commit()
}

// RemoveBookmark drops the lesson from the user's bookmark set, decrementing
// the counter only when the membership actually existed.
func (s *UserService) RemoveBookmark(userID, lessonID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(1) FROM lessons WHERE id = ?", lessonID).Scan(&exists); err != nil {
		return fmt.Errorf("checking lesson: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	res, err := tx.Exec("DELETE FROM bookmarks WHERE user_id = ? AND lesson_id = ?", userID, lessonID)
	if err != nil {
		return fmt.Errorf("deleting bookmark: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if removed > 0 {
		if _, err := tx.Exec("UPDATE lessons SET bookmark_count = MAX(bookmark_count - 1, 0) WHERE id = ?", lessonID); err != nil {
			return fmt.Errorf("lowering bookmark count: %w", err)
		}
	}
	return tx.Commit()
}

// ReconcileBookmarkCounts rewrites every lesson's bookmark_count from the
// bookmarks reverse index, which is the ground truth. Returns the number of
// lessons whose counter had drifted.
func (s *UserService) ReconcileBookmarkCounts() (int64, error) {
	res, err := s.db.Exec(`
		UPDATE lessons SET bookmark_count = (
			SELECT COUNT(1) FROM bookmarks WHERE bookmarks.lesson_id = lessons.id
		) WHERE bookmark_count <> (
			SELECT COUNT(1) FROM bookmarks WHERE bookmarks.lesson_id = lessons.id
		)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// backRefs collects the user's owned-lesson and bookmark id lists.
func (s *UserService) backRefs(userID string) (lessonIDs, bookmarkIDs []string, err error) {
	lessonIDs, err = queryIDs(s.db, "SELECT id FROM lessons WHERE author_id = ? ORDER BY creation_date", userID)
	if err != nil {
		return nil, nil, err
	}
	bookmarkIDs, err = queryIDs(s.db, "SELECT lesson_id FROM bookmarks WHERE user_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, nil, err
	}
	return lessonIDs, bookmarkIDs, nil
}

func queryIDs(db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, []string, error) {
	var user models.User
	var gradesJSON, subjectsJSON, commentsJSON string
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.Description, &user.Location, &user.JoinDate,
		&gradesJSON, &subjectsJSON, &commentsJSON)
	if err != nil {
		return models.User{}, nil, err
	}
	user.Grades = unmarshalList(gradesJSON)
	user.Subjects = unmarshalList(subjectsJSON)
	return user, unmarshalList(commentsJSON), nil
}

func marshalList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func unmarshalList(s string) []string {
	v := []string{}
	if s != "" {
		_ = json.Unmarshal([]byte(s), &v)
	}
	return v
}
