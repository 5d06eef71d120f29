package domain

import (
	"database/sql/driver" // Valuer for the tag column
	"encoding/json"       // Tags are stored as a JSON array
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Episode Model
type Episode struct {
	ID           string    `gorm:"primaryKey;size:36" json:"_id"`
	CreatorID    string    `gorm:"size:36;not null;index" json:"creatorId"` // Owning creator, immutable
	Creator      *Creator  `gorm:"-" json:"creator,omitempty"`              // Resolved for responses
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	AudioURL     string    `gorm:"type:text;not null" json:"audioUrl"`
	ThumbnailURL string    `gorm:"type:text;not null" json:"thumbnailUrl"`
	Tags         Tags      `gorm:"type:text" json:"tags"`
	Category     string    `gorm:"size:64;not null;index" json:"category"`
	PlayCount    int64     `gorm:"not null;default:0" json:"playCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Creator is the public projection of an episode owner
type Creator struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// BeforeCreate assigns an id when the caller did not
func (e *Episode) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether userID is the episode's creator
func (e *Episode) OwnedBy(userID string) bool {
	return e.CreatorID == userID
}

// Tags is a set of trimmed, non-empty strings
type Tags []string

// ParseTags splits a comma separated list, trims every entry and drops empties and duplicates
func ParseTags(raw string) Tags {
	tags := Tags{}
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// Value stores tags as a JSON array
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads tags back from a JSON array
func (t *Tags) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return errors.New("tags: unsupported column type")
	}
	if len(b) == 0 {
		*t = Tags{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*t = Tags(out)
	return nil
}

// EpisodeFields are the metadata supplied when an episode is created
type EpisodeFields struct {
	Title       string
	Description string
	Tags        string // Comma separated
	Category    string
}

// Validate reports a Validation error when a required field is blank
func (f EpisodeFields) Validate() error {
	if strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.Description) == "" || strings.TrimSpace(f.Category) == "" {
		return ValidationError("Please provide title, description and category")
	}
	return nil
}

// EpisodePatch is a partial update; unset fields keep their stored value
type EpisodePatch struct {
	Title        Optional[string]
	Description  Optional[string]
	Tags         Optional[string] // Comma separated, re-parsed only when set
	Category     Optional[string]
	AudioURL     Optional[string]
	ThumbnailURL Optional[string]
}

// EpisodeFilter selects episodes for listing. Empty fields do not restrict.
type EpisodeFilter struct {
	Search   string // Case-insensitive substring of title, description or any tag
	Category string // Exact match
	OwnerID  string // Restrict to one creator
}
