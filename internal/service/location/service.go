package location

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/pkg/cache"
	"github.com/Temutjin2k/campus-radar/pkg/clock"
	"github.com/Temutjin2k/campus-radar/pkg/geo"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-radar/pkg/metrics"
	"github.com/google/uuid"
)

const (
	MinHistoryHours = 1
	MaxHistoryHours = 168
)

type Config struct {
	UpdateCooldown time.Duration
	MaxRadius      float64
	HistoryLimit   int
	StoreTimeout   time.Duration
	LocationTTL    time.Duration
	NearbyTTL      time.Duration
	PublishTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.UpdateCooldown <= 0 {
		c.UpdateCooldown = 30 * time.Second
	}
	if c.MaxRadius <= 0 {
		c.MaxRadius = 50000
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 500
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 3 * time.Second
	}
	if c.LocationTTL <= 0 {
		c.LocationTTL = 30 * time.Minute
	}
	if c.NearbyTTL <= 0 {
		c.NearbyTTL = 5 * time.Minute
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 500 * time.Millisecond
	}
	return c
}

// Service owns user positions: writes, proximity search and the caches around them.
type Service struct {
	repos     repos
	buildings BuildingResolver
	publisher Publisher
	cache     cache.Cache
	clock     clock.Clock
	cfg       Config
	l         logger.Logger
}

type repos struct {
	location LocationRepo
	history  HistoryRepo
}

// New returns the location service. history and publisher may be nil.
func New(locationRepo LocationRepo, historyRepo HistoryRepo, buildings BuildingResolver, publisher Publisher, c cache.Cache, clk clock.Clock, cfg Config, l logger.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	if buildings == nil {
		buildings = NewLinearResolver(DefaultBuildings)
	}
	return &Service{
		repos: repos{
			location: locationRepo,
			history:  historyRepo,
		},
		buildings: buildings,
		publisher: publisher,
		cache:     c,
		clock:     clk,
		cfg:       cfg.withDefaults(),
		l:         l,
	}
}

func locationKey(userID uuid.UUID) string {
	return "location:" + userID.String()
}

func nearbyPrefix(userID uuid.UUID) string {
	return "nearby:" + userID.String() + ":"
}

func nearbyKey(userID uuid.UUID, radius float64) string {
	return nearbyPrefix(userID) + strconv.FormatFloat(radius, 'f', -1, 64)
}

// UpdateLocation stores a new position for userID. A second update inside the cooldown fails with ErrRateLimited.
func (s *Service) UpdateLocation(ctx context.Context, userID uuid.UUID, at models.Coordinates, accuracy float64) (*models.LocationRecord, error) {
	ctx = wrap.WithAction(wrap.WithUserID(ctx, userID.String()), types.ActionLocationUpdated)

	if !geo.ValidCoordinates(at.Latitude, at.Longitude) {
		metrics.LocationUpdatesTotal.WithLabelValues("invalid").Inc()
		return nil, types.ErrInvalidCoordinates
	}
	if accuracy < 0 || math.IsNaN(accuracy) || math.IsInf(accuracy, 0) {
		metrics.LocationUpdatesTotal.WithLabelValues("invalid").Inc()
		return nil, types.ErrInvalidAccuracy
	}

	now := s.clock.Now().UTC()

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	current, err := s.repos.location.Get(storeCtx, userID)
	switch {
	case err == nil:
		if now.Sub(current.LastUpdated) < s.cfg.UpdateCooldown {
			return nil, s.rateLimited(ctx, current.LastUpdated, now)
		}
	case errors.Is(err, types.ErrLocationNotFound):
	default:
		metrics.LocationUpdatesTotal.WithLabelValues("error").Inc()
		return nil, unavailable(err)
	}

	record, err := s.repos.location.Upsert(storeCtx, userID, at, accuracy, now, s.cfg.UpdateCooldown)
	if err != nil {
		if errors.Is(err, types.ErrRateLimited) {
			return nil, s.rateLimited(ctx, now, now)
		}
		metrics.LocationUpdatesTotal.WithLabelValues("error").Inc()
		return nil, unavailable(err)
	}
	metrics.LocationUpdatesTotal.WithLabelValues("accepted").Inc()

	if s.repos.history != nil {
		point := models.LocationHistoryPoint{
			UserID:     userID,
			Latitude:   at.Latitude,
			Longitude:  at.Longitude,
			Accuracy:   accuracy,
			RecordedAt: now,
		}
		if err := s.repos.history.Append(storeCtx, point); err != nil {
			s.l.Warn(wrap.WithAction(ctx, types.ActionHistoryAppendFailed), "failed to append location history", "error", err.Error())
		}
	}

	cache.SetJSON(ctx, s.cache, locationKey(userID), record.Cached(), s.cfg.LocationTTL)
	cache.DeletePrefix(ctx, s.cache, nearbyPrefix(userID))

	lat, lon := at.Latitude, at.Longitude
	s.publish(ctx, models.LocationEvent{
		Type:      types.EventLocationUpdated,
		UserID:    userID,
		Latitude:  &lat,
		Longitude: &lon,
		Accuracy:  &accuracy,
		Timestamp: now,
	})

	s.l.Debug(ctx, "location updated", "lat", lat, "lon", lon, "accuracy", accuracy)
	return record, nil
}

func (s *Service) rateLimited(ctx context.Context, last, now time.Time) error {
	metrics.LocationUpdatesTotal.WithLabelValues("rate_limited").Inc()
	s.l.Debug(wrap.WithAction(ctx, types.ActionLocationRateLimited), "location update rejected by cooldown",
		"since_last", now.Sub(last).String(), "cooldown", s.cfg.UpdateCooldown.String())
	return types.ErrUpdateTooSoon
}

// FindNearbyUsers lists visible users within radiusMeters of userID, closest first.
func (s *Service) FindNearbyUsers(ctx context.Context, userID uuid.UUID, radiusMeters float64) ([]models.NearbyUser, error) {
	ctx = wrap.WithAction(wrap.WithUserID(ctx, userID.String()), types.ActionNearbySearch)

	if math.IsNaN(radiusMeters) || radiusMeters <= 0 || radiusMeters > s.cfg.MaxRadius {
		return nil, types.ErrInvalidRadius
	}

	key := nearbyKey(userID, radiusMeters)
	if cached, ok := cache.GetJSON[[]models.NearbyUser](ctx, s.cache, key); ok {
		if cached == nil {
			cached = []models.NearbyUser{}
		}
		return cached, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	self, err := s.repos.location.Get(storeCtx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		return nil, unavailable(err)
	}
	if !self.IsActive {
		return nil, types.ErrLocationInactive
	}

	users, err := s.repos.location.Nearby(storeCtx, models.NearbyFilter{
		Center: models.Coordinates{
			Latitude:  self.Location.Lat(),
			Longitude: self.Location.Lon(),
		},
		RadiusMeters:  radiusMeters,
		ExcludeUserID: userID,
	})
	if err != nil {
		return nil, unavailable(err)
	}
	if users == nil {
		users = []models.NearbyUser{}
	}

	metrics.NearbyResultSize.Observe(float64(len(users)))
	cache.SetJSON(ctx, s.cache, key, users, s.cfg.NearbyTTL)

	return users, nil
}

// Distance is the great-circle distance between a and b in meters.
func (s *Service) Distance(a, b models.Coordinates) float64 {
	return geo.HaversineMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// GetUserBuilding names the building closest to the user's last position.
func (s *Service) GetUserBuilding(ctx context.Context, userID uuid.UUID) (string, error) {
	loc, err := s.CachedLocation(ctx, userID)
	if err != nil {
		return "", err
	}
	if loc == nil {
		return "", types.ErrLocationNotFound
	}
	return s.buildings.Resolve(loc.Latitude, loc.Longitude), nil
}

// CachedLocation returns the user's last position from the cache, falling back to the store.
// A user without a record yields nil and no error.
func (s *Service) CachedLocation(ctx context.Context, userID uuid.UUID) (*models.CachedLocation, error) {
	key := locationKey(userID)
	if loc, ok := cache.GetJSON[models.CachedLocation](ctx, s.cache, key); ok {
		return &loc, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	record, err := s.repos.location.Get(storeCtx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, unavailable(err)
	}

	loc := record.Cached()
	cache.SetJSON(ctx, s.cache, key, loc, s.cfg.LocationTTL)
	return loc, nil
}

// ToggleLocationSharing turns discovery of userID by others on or off.
func (s *Service) ToggleLocationSharing(ctx context.Context, userID uuid.UUID, enabled bool) error {
	ctx = wrap.WithAction(wrap.WithUserID(ctx, userID.String()), types.ActionSharingToggled)

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.repos.location.SetSharing(storeCtx, userID, enabled); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return err
		}
		return unavailable(err)
	}

	s.clearUserCaches(ctx, userID)
	s.publish(ctx, models.LocationEvent{
		Type:      types.EventSharingChanged,
		UserID:    userID,
		Enabled:   &enabled,
		Timestamp: s.clock.Now().UTC(),
	})

	s.l.Info(ctx, "location sharing toggled", "enabled", enabled)
	return nil
}

// ToggleIncognitoMode hides the user entirely; enabled=true marks the record inactive.
func (s *Service) ToggleIncognitoMode(ctx context.Context, userID uuid.UUID, enabled bool) error {
	ctx = wrap.WithAction(wrap.WithUserID(ctx, userID.String()), types.ActionIncognitoToggled)

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.repos.location.SetActive(storeCtx, userID, !enabled); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return err
		}
		return unavailable(err)
	}

	s.clearUserCaches(ctx, userID)
	s.publish(ctx, models.LocationEvent{
		Type:      types.EventIncognitoChanged,
		UserID:    userID,
		Enabled:   &enabled,
		Timestamp: s.clock.Now().UTC(),
	})

	s.l.Info(ctx, "incognito mode toggled", "enabled", enabled)
	return nil
}

// GetLocationHistory returns the user's recorded points from the last hours, most recent first.
func (s *Service) GetLocationHistory(ctx context.Context, userID uuid.UUID, hours int) ([]models.LocationHistoryPoint, error) {
	if hours < MinHistoryHours || hours > MaxHistoryHours {
		return nil, types.ErrInvalidHours
	}
	if s.repos.history == nil {
		return []models.LocationHistoryPoint{}, nil
	}

	since := s.clock.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	points, err := s.repos.history.ListSince(storeCtx, userID, since, s.cfg.HistoryLimit)
	if err != nil {
		return nil, unavailable(err)
	}
	if points == nil {
		points = []models.LocationHistoryPoint{}
	}
	return points, nil
}

func (s *Service) clearUserCaches(ctx context.Context, userID uuid.UUID) {
	s.cache.Delete(ctx, locationKey(userID))
	cache.DeletePrefix(ctx, s.cache, nearbyPrefix(userID))
}

func (s *Service) publish(ctx context.Context, ev models.LocationEvent) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, s.cfg.PublishTimeout)
	defer cancel()

	if err := s.publisher.PublishLocationEvent(pubCtx, ev); err != nil {
		s.l.Warn(wrap.WithAction(ctx, types.ActionEventPublishFailed), "failed to publish location event",
			"event", ev.Type.String(), "error", err.Error())
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", types.ErrUnavailable, err)
}
