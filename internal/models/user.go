package models

import (
	"strings"
	"time"
	"unicode"
)

// UserProfile represents a user's published profile information.
type UserProfile struct {
	UserID          string    `json:"userId"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Profession      string    `json:"profession"`
	CurrentEmployer string    `json:"currentEmployer"`
	Description     string    `json:"description"`
	ProfilePic      string    `json:"profilePic,omitempty"`
	DirectorySlug   string    `json:"directorySlug,omitempty"` // empty until allocated
	TopSkills       []string  `json:"topSkills,omitempty"`     // at most 3
	CreatedAt       time.Time `json:"createdAt"`
}

// DisplayName returns the title-cased "First Last" form used on generated pages.
func (p UserProfile) DisplayName() string {
	return TitleCase(p.FirstName) + " " + TitleCase(p.LastName)
}

// TitleCase upper-cases the first letter of every hyphen- or space-separated
// word. Names are stored lower-cased, so this is the display transform.
func TitleCase(s string) string {
	var b strings.Builder
	start := true
	for _, r := range s {
		if start {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		start = r == ' ' || r == '-'
	}
	return b.String()
}
