package memory

import (
	"time"
)

// Author identifies who created a memory.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Memory is a single persisted record in the memories collection.
// ID is immutable once created and CreatedAt is never zero once persisted.
type Memory struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Author      Author     `json:"author"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	IsPublic    bool       `json:"isPublic"`
	MediaURLs   []string   `json:"mediaUrls,omitempty"`
	Location    string     `json:"location,omitempty"`
	People      []string   `json:"people,omitempty"`
}

// HasMedia reports whether at least one media URL is attached.
func (m Memory) HasMedia() bool {
	return len(m.MediaURLs) > 0
}

// HasTag reports whether the memory carries the exact tag.
func (m Memory) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out memories without sharing slices.
func (m Memory) Clone() Memory {
	c := m
	c.Tags = cloneStrings(m.Tags)
	c.MediaURLs = cloneStrings(m.MediaURLs)
	c.People = cloneStrings(m.People)
	if m.UpdatedAt != nil {
		u := *m.UpdatedAt
		c.UpdatedAt = &u
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
