package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/auth"
	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/metrics"
	"github.com/pkordes/packlist/backend/internal/querycache"
)

// Query cache entities. Reads are cached under these names and every
// successful mutation invalidates the affected ones for the acting user.
const (
	EntityTrip           = "trip"
	EntityTrips          = "trips"
	EntityItems          = "items"
	EntityBags           = "bags"
	EntityTemplate       = "template"
	EntityTemplates      = "templates"
	EntityActivities     = "activities"
	EntityCategories     = "categories"
	EntityProfile        = "profile"
	EntityTripWeather    = "tripWeather"
	EntityWeatherPreview = "weatherPreview"
)

// invalidator drops cached reads after a mutation and counts it.
type invalidator struct {
	cache   *querycache.Cache
	metrics *metrics.Metrics
	log     *slog.Logger
}

func newInvalidator(cache *querycache.Cache, m *metrics.Metrics, log *slog.Logger) invalidator {
	if cache == nil {
		cache = querycache.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return invalidator{cache: cache, metrics: m, log: log}
}

func (i invalidator) invalidate(keys ...querycache.Key) {
	for _, k := range keys {
		n := i.cache.Invalidate(k)
		i.metrics.ObserveInvalidation(k.Entity)
		i.log.Debug("query cache invalidated", "key", k.String(), "dropped", n)
	}
}

func tripKey(entity string, tripID uuid.UUID, user string) querycache.Key {
	return querycache.Key{Entity: entity, ID: tripID.String(), User: user}
}

func userKey(entity, user string) querycache.Key {
	return querycache.Key{Entity: entity, User: user}
}

// owner returns the acting principal.
func owner(ctx context.Context) (string, error) {
	return auth.RequireUser(ctx)
}

func isNotEnabled(err error) bool {
	return errors.Is(err, domain.ErrNotEnabled)
}
