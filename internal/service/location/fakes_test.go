package location

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/pkg/cache"
	"github.com/Temutjin2k/campus-radar/pkg/clock"
	"github.com/Temutjin2k/campus-radar/pkg/geo"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	"github.com/google/uuid"
)

type fakeLocationRepo struct {
	mu          sync.Mutex
	records     map[uuid.UUID]models.LocationRecord
	nearbyCalls int
	err         error
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{records: make(map[uuid.UUID]models.LocationRecord)}
}

func (f *fakeLocationRepo) put(r models.LocationRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[r.UserID] = r
}

func (f *fakeLocationRepo) Get(_ context.Context, userID uuid.UUID) (*models.LocationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.records[userID]
	if !ok {
		return nil, types.ErrLocationNotFound
	}
	return &r, nil
}

func (f *fakeLocationRepo) Upsert(_ context.Context, userID uuid.UUID, at models.Coordinates, accuracy float64, now time.Time, cooldown time.Duration) (*models.LocationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.records[userID]
	if ok && cooldown > 0 && r.LastUpdated.After(now.Add(-cooldown)) {
		return nil, types.ErrUpdateTooSoon
	}
	if !ok {
		r = models.LocationRecord{
			UserID:                 userID,
			IsActive:               true,
			LocationSharingEnabled: true,
			GeofenceRadius:         models.DefaultGeofenceRadius,
		}
	}
	r.Location = models.NewGeoPoint(at.Latitude, at.Longitude)
	r.Accuracy = accuracy
	r.LastUpdated = now
	r.LastSeen = now
	f.records[userID] = r
	return &r, nil
}

func (f *fakeLocationRepo) SetSharing(_ context.Context, userID uuid.UUID, enabled bool) error {
	return f.update(userID, func(r *models.LocationRecord) { r.LocationSharingEnabled = enabled })
}

func (f *fakeLocationRepo) SetActive(_ context.Context, userID uuid.UUID, active bool) error {
	return f.update(userID, func(r *models.LocationRecord) { r.IsActive = active })
}

func (f *fakeLocationRepo) update(userID uuid.UUID, fn func(r *models.LocationRecord)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	r, ok := f.records[userID]
	if !ok {
		return types.ErrLocationNotFound
	}
	fn(&r)
	f.records[userID] = r
	return nil
}

func (f *fakeLocationRepo) Nearby(_ context.Context, flt models.NearbyFilter) ([]models.NearbyUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nearbyCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.NearbyUser
	for id, r := range f.records {
		if id == flt.ExcludeUserID || !r.IsActive || !r.LocationSharingEnabled {
			continue
		}
		d := geo.HaversineMeters(flt.Center.Latitude, flt.Center.Longitude, r.Location.Lat(), r.Location.Lon())
		if d > flt.RadiusMeters {
			continue
		}
		out = append(out, models.NearbyUser{
			UserID:      id,
			Distance:    d,
			Accuracy:    r.Accuracy,
			LastUpdated: r.LastUpdated,
			LastSeen:    r.LastSeen,
			Coordinates: r.Location,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

func (f *fakeLocationRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nearbyCalls
}

type fakeHistoryRepo struct {
	mu     sync.Mutex
	points []models.LocationHistoryPoint
}

func (f *fakeHistoryRepo) Append(_ context.Context, p models.LocationHistoryPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
	return nil
}

func (f *fakeHistoryRepo) ListSince(_ context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.LocationHistoryPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LocationHistoryPoint
	for i := len(f.points) - 1; i >= 0; i-- {
		p := f.points[i]
		if p.UserID == userID && !p.RecordedAt.Before(since) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.LocationEvent
}

func (f *fakePublisher) PublishLocationEvent(_ context.Context, msg models.LocationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return nil
}

type testEnv struct {
	svc       *Service
	repo      *fakeLocationRepo
	history   *fakeHistoryRepo
	publisher *fakePublisher
	cache     cache.Cache
	clock     *clock.Fake
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := clock.NewFake(time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC))
	log := logger.New(io.Discard, "test", logger.LevelError)

	c, err := cache.NewTiered(nil, cache.Options{LocalSize: 1024, Clock: clk}, log)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}

	env := &testEnv{
		repo:      newFakeLocationRepo(),
		history:   &fakeHistoryRepo{},
		publisher: &fakePublisher{},
		cache:     c,
		clock:     clk,
	}
	env.svc = New(env.repo, env.history, NewLinearResolver(DefaultBuildings), env.publisher, c, clk, Config{}, log)
	return env
}

// placeUser stores a record directly, bypassing the cooldown.
func (e *testEnv) placeUser(lat, lon float64, active, sharing bool) uuid.UUID {
	id := uuid.New()
	e.repo.put(models.LocationRecord{
		UserID:                 id,
		Location:               models.NewGeoPoint(lat, lon),
		LastUpdated:            e.clock.Now().Add(-time.Hour),
		LastSeen:               e.clock.Now().Add(-time.Hour),
		IsActive:               active,
		LocationSharingEnabled: sharing,
		GeofenceRadius:         models.DefaultGeofenceRadius,
	})
	return id
}
