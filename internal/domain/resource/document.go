package resource

import "time"

// UserRef is the public projection of an audit-trail actor.
type UserRef struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Media is a public media file.
type Media struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"documentId"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Mime       string    `json:"mime"`
	Size       float64   `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	CreatedBy  *UserRef  `json:"createdBy"`
	UpdatedBy  *UserRef  `json:"updatedBy"`
}

// Category is a public category.
type Category struct {
	ID          int64      `json:"id"`
	DocumentID  string     `json:"documentId"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedBy   *UserRef   `json:"createdBy"`
	UpdatedBy   *UserRef   `json:"updatedBy"`
}

// Chapter is a public audio-book chapter.
type Chapter struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	AudioURL  string `json:"audio_url"`
	Duration  string `json:"duration"`
	AudioFile *Media `json:"audio_file"`
}

// Document is a resource as returned by search.
type Document struct {
	ID               int64      `json:"id"`
	DocumentID       string     `json:"documentId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	KhmerTitle       string     `json:"khmer_title"`
	KhmerDescription string     `json:"khmer_description"`
	Slug             string     `json:"slug"`
	Locale           string     `json:"locale"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	PublishedAt      *time.Time `json:"publishedAt"`
	Cover            *Media     `json:"cover"`
	Categories       []Category `json:"categories"`
	Chapters         []Chapter  `json:"chapters"`
	CreatedBy        *UserRef   `json:"createdBy"`
	UpdatedBy        *UserRef   `json:"updatedBy"`
}
