package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateAndListEvents(t *testing.T) {
	svc := NewEventService(testDB(t))

	slug := "john-doe"
	require.NoError(t, svc.CreateEvent("site.published", "info", "site published", &slug))
	require.NoError(t, svc.CreateEvent("disk.alert", "warning", "disk almost full", nil))

	events, err := svc.GetRecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	for _, e := range events {
		require.NotEmpty(t, e.ID)
		require.WithinDuration(t, time.Now(), e.CreatedAt, time.Minute)
	}

	var slugs []string
	for _, e := range events {
		if e.SiteSlug != nil {
			slugs = append(slugs, *e.SiteSlug)
		}
	}
	require.Equal(t, []string{"john-doe"}, slugs)
}

func TestGetRecentEventsHonorsLimit(t *testing.T) {
	svc := NewEventService(testDB(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.CreateEvent("site.stage", "info", "staging", nil))
	}

	events, err := svc.GetRecentEvents(3)
	require.NoError(t, err)
	require.Len(t, events, 3)
}
