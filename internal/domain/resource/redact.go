package resource

// Redact projects a stored record onto its public shape. Audit actors at every
// depth collapse to UserRef; credentials and e-mail have no public field.
func Redact(r *Record) Document {
	categories := make([]Category, len(r.Categories))
	for i := range r.Categories {
		categories[i] = redactCategory(&r.Categories[i])
	}
	chapters := make([]Chapter, len(r.Chapters))
	for i := range r.Chapters {
		chapters[i] = redactChapter(&r.Chapters[i])
	}

	return Document{
		ID:               r.ID,
		DocumentID:       r.DocumentID,
		Title:            r.Title,
		Description:      r.Description,
		KhmerTitle:       r.KhmerTitle,
		KhmerDescription: r.KhmerDescription,
		Slug:             r.Slug,
		Locale:           r.Locale,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		PublishedAt:      r.PublishedAt,
		Cover:            redactFile(r.Cover),
		Categories:       categories,
		Chapters:         chapters,
		CreatedBy:        redactUser(r.CreatedBy),
		UpdatedBy:        redactUser(r.UpdatedBy),
	}
}

// RedactAll redacts records preserving their order.
func RedactAll(records []Record) []Document {
	docs := make([]Document, len(records))
	for i := range records {
		docs[i] = Redact(&records[i])
	}
	return docs
}

func redactUser(u *AdminUser) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Firstname: u.Firstname, Lastname: u.Lastname}
}

func redactFile(f *FileRecord) *Media {
	if f == nil {
		return nil
	}
	return &Media{
		ID:         f.ID,
		DocumentID: f.DocumentID,
		Name:       f.Name,
		URL:        f.URL,
		Mime:       f.Mime,
		Size:       f.Size,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
		CreatedBy:  redactUser(f.CreatedBy),
		UpdatedBy:  redactUser(f.UpdatedBy),
	}
}

func redactCategory(c *CategoryRecord) Category {
	return Category{
		ID:          c.ID,
		DocumentID:  c.DocumentID,
		Name:        c.Name,
		Slug:        c.Slug,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		PublishedAt: c.PublishedAt,
		CreatedBy:   redactUser(c.CreatedBy),
		UpdatedBy:   redactUser(c.UpdatedBy),
	}
}

func redactChapter(c *ChapterRecord) Chapter {
	return Chapter{
		ID:        c.ID,
		Title:     c.Title,
		AudioURL:  c.AudioURL,
		Duration:  c.Duration,
		AudioFile: redactFile(c.AudioFile),
	}
}
