package tracking

import (
	"context"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
)

type TrackingService interface {
	// ListLiveLocations returns checked-in staff visible to the actor, most
	// recent check-in first. Staff accounts are refused with ErrForbidden.
	ListLiveLocations(ctx context.Context, actor user.Actor) (LiveLocationsResponse, error)
}

// Publisher fans live events out to stream subscribers.
type Publisher interface {
	Publish(companyID string, eventType string, event LiveEvent)
}
