package models

import "time"

// User is the database shape of an account. The password hash never leaves
// the service layer; everything outside it works with PublicUser, which has
// no password field to begin with.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Description  string
	Location     string
	JoinDate     time.Time
	Grades       []string
	Subjects     []string
}

// PublicUser is the representation shared across the service boundary and
// serialized to clients. The id lists are back-references derived from the
// store's reverse indexes at read time.
type PublicUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	JoinDate    time.Time `json:"joinDate"`
	Grades      []string  `json:"grades"`
	Subjects    []string  `json:"subjects"`
	LessonIDs   []string  `json:"lessonIds"`
	BookmarkIDs []string  `json:"bookmarkIds"`
	CommentIDs  []string  `json:"commentIds"`
}

// ProfilePatch carries the profile fields a user may change about themselves.
// Email and password are deliberately absent: neither can be rewritten
// through the profile path.
type ProfilePatch struct {
	FirstName   *string   `json:"firstName,omitempty"`
	LastName    *string   `json:"lastName,omitempty"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Grades      *[]string `json:"grades,omitempty"`
	Subjects    *[]string `json:"subjects,omitempty"`
}

// Public builds the public projection of u with the given back-references.
func (u User) Public(lessonIDs, bookmarkIDs, commentIDs []string) PublicUser {
	if lessonIDs == nil {
		lessonIDs = []string{}
	}
	if bookmarkIDs == nil {
		bookmarkIDs = []string{}
	}
	if commentIDs == nil {
		commentIDs = []string{}
	}
	grades := u.Grades
	if grades == nil {
		grades = []string{}
	}
	subjects := u.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Description: u.Description,
		Location:    u.Location,
		JoinDate:    u.JoinDate,
		Grades:      grades,
		Subjects:    subjects,
		LessonIDs:   lessonIDs,
		BookmarkIDs: bookmarkIDs,
		CommentIDs:  commentIDs,
	}
}
