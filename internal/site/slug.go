package site

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aboutme-website/aboutme-be/internal/services"
)

// maxSlugAttempts bounds the numbered-suffix search. Hitting it means
// something is systematically wrong, not that the namespace is full.
const maxSlugAttempts = 100

// Allocator assigns globally unique public directory slugs to users. A slug
// is immutable once persisted; allocating again for the same user returns the
// stored slug.
type Allocator struct {
	profiles services.ProfileServiceProvider
}

// NewAllocator creates a new Allocator.
func NewAllocator(profiles services.ProfileServiceProvider) *Allocator {
	return &Allocator{profiles: profiles}
}

// Allocate computes "first-last" from the user's name and claims the first
// free candidate among base, base-1, base-2, ... Uniqueness is enforced by
// the storage layer, so two concurrent allocations with the same base cannot
// end up with the same slug; the loser simply moves to the next suffix.
func (a *Allocator) Allocate(userID, firstName, lastName string) (string, error) {
	if existing, err := a.profiles.GetDirectorySlug(userID); err != nil {
		return "", err
	} else if existing != "" {
		return existing, nil
	}

	base := Slugify(firstName) + "-" + Slugify(lastName)

	for i := 0; i < maxSlugAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}

		err := a.profiles.SaveDirectorySlug(userID, candidate)
		if err == nil {
			return candidate, nil
		}
		if errors.Is(err, services.ErrSlugTaken) {
			continue
		}

		// A concurrent run for the same user may have won the insert; in
		// that case the stored slug is the answer.
		if existing, lookupErr := a.profiles.GetDirectorySlug(userID); lookupErr == nil && existing != "" {
			return existing, nil
		}
		return "", err
	}

	return "", ErrAllocationConflict
}

// Slugify converts a name or title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
