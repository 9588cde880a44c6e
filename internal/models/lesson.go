package models

import "time"

// Lesson is a study document shared on the platform. AuthorID is set once at
// creation and never changes; a published lesson always carries a
// publication date.
type Lesson struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Subtitle         string     `json:"subtitle,omitempty"`
	Grade            string     `json:"grade,omitempty"`
	Subject          string     `json:"subject,omitempty"`
	IsDraft          bool       `json:"isDraft"`
	CreationDate     time.Time  `json:"creationDate"`
	LastModifiedDate time.Time  `json:"lastModifiedDate"`
	PublicationDate  *time.Time `json:"publicationDate,omitempty"`
	BookmarkCount    int        `json:"bookmarkCount"`
	AuthorID         string     `json:"authorId"`
	CategoryIDs      []string   `json:"categoryIds"`
	CommentIDs       []string   `json:"commentIds"`
	File             LessonFile `json:"file"`
}

// LessonFile is the attachment reference stored with a lesson. The upload
// pipeline itself lives elsewhere; only the reference is persisted here.
type LessonFile struct {
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// LessonCreate is the payload for publishing or drafting a new lesson.
type LessonCreate struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle,omitempty"`
	Grade    string     `json:"grade,omitempty"`
	Subject  string     `json:"subject,omitempty"`
	IsDraft  *bool      `json:"isDraft,omitempty"`
	File     LessonFile `json:"file"`
}

// LessonPatch carries the fields an author may change on an existing lesson.
// Pointers distinguish "not sent" from zero values.
type LessonPatch struct {
	Title    *string     `json:"title,omitempty"`
	Subtitle *string     `json:"subtitle,omitempty"`
	Grade    *string     `json:"grade,omitempty"`
	Subject  *string     `json:"subject,omitempty"`
	IsDraft  *bool       `json:"isDraft,omitempty"`
	File     *LessonFile `json:"file,omitempty"`
}
