package privacy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/pkg/cache"
	"github.com/Temutjin2k/campus-radar/pkg/geo"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-radar/pkg/metrics"
	"github.com/Temutjin2k/campus-radar/pkg/trm"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	SettingsTTL  time.Duration
	DecisionTTL  time.Duration
	StoreTimeout time.Duration
	// Parallelism bounds concurrent location and relationship lookups per batch.
	Parallelism int
}

func (c Config) withDefaults() Config {
	if c.SettingsTTL <= 0 {
		c.SettingsTTL = time.Hour
	}
	if c.DecisionTTL <= 0 {
		c.DecisionTTL = 5 * time.Minute
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 3 * time.Second
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 8
	}
	return c
}

// Service stores privacy settings and decides who may see whose profile.
type Service struct {
	repo      SettingsRepo
	locations LocationReader
	graph     RelationshipGraph
	cache     cache.Cache
	trm       trm.TxManager
	cfg       Config
	l         logger.Logger
}

// New returns the privacy service. A nil graph means nobody is connected.
func New(repo SettingsRepo, locations LocationReader, graph RelationshipGraph, c cache.Cache, trm trm.TxManager, cfg Config, l logger.Logger) *Service {
	if graph == nil {
		graph = NoConnections{}
	}
	return &Service{
		repo:      repo,
		locations: locations,
		graph:     graph,
		cache:     c,
		trm:       trm,
		cfg:       cfg.withDefaults(),
		l:         l,
	}
}

func settingsKey(userID uuid.UUID) string {
	return "privacy:settings:" + userID.String()
}

// decisionKey expects ids sorted and without duplicates.
func decisionKey(viewerID uuid.UUID, ids []uuid.UUID) string {
	var b strings.Builder
	b.WriteString("privacy:batch:")
	b.WriteString(viewerID.String())
	b.WriteByte(':')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id.String())
	}
	return b.String()
}

// GetPrivacySettings returns the user's settings, or the defaults when none are stored.
func (s *Service) GetPrivacySettings(ctx context.Context, userID uuid.UUID) (*models.PrivacySettings, error) {
	key := settingsKey(userID)
	if cached, ok := cache.GetJSON[models.PrivacySettings](ctx, s.cache, key); ok {
		return &cached, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	settings, err := s.repo.Get(storeCtx, userID)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrSettingsNotFound):
		settings = models.DefaultPrivacySettings(userID)
	default:
		return nil, unavailable(err)
	}

	cache.SetJSON(ctx, s.cache, key, settings, s.cfg.SettingsTTL)
	return settings, nil
}

// UpdatePrivacySettings merges patch into the stored settings (or the defaults) and saves the result.
func (s *Service) UpdatePrivacySettings(ctx context.Context, userID uuid.UUID, patch models.PrivacySettingsPatch) (*models.PrivacySettings, error) {
	ctx = wrap.WithAction(wrap.WithUserID(ctx, userID.String()), types.ActionPrivacySettingsUpdate)

	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	var merged models.PrivacySettings
	err := s.trm.Do(storeCtx, func(ctx context.Context) error {
		// a first-time row must exist before the lock, or concurrent patches both merge into defaults
		if err := s.repo.InsertDefault(ctx, models.DefaultPrivacySettings(userID)); err != nil {
			return err
		}

		current, err := s.repo.GetForUpdate(ctx, userID)
		if errors.Is(err, types.ErrSettingsNotFound) {
			current = models.DefaultPrivacySettings(userID)
		} else if err != nil {
			return err
		}

		merged = patch.Apply(*current)
		merged.UserID = userID
		return s.repo.Upsert(ctx, &merged)
	})
	if errors.Is(err, types.ErrUserNotFound) {
		return nil, types.ErrUserNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}

	s.cache.Delete(ctx, settingsKey(userID))

	s.l.Info(ctx, "privacy settings updated",
		"visibility", merged.ProfileVisibility.String(), "radius", merged.VisibilityRadius)
	return &merged, nil
}

// ValidatePatch checks the fields a patch sets.
func ValidatePatch(p models.PrivacySettingsPatch) error {
	if p.ProfileVisibility != nil && !p.ProfileVisibility.IsValid() {
		return types.ErrInvalidVisibility
	}
	if p.VisibilityRadius != nil {
		r := *p.VisibilityRadius
		if r < types.MinVisibilityRadius || r > types.MaxVisibilityRadius {
			return types.ErrInvalidVisRadius
		}
	}
	return nil
}

// BatchCanViewProfile decides for every subject whether viewerID may see it.
// Each subject is judged independently; duplicates are collapsed.
func (s *Service) BatchCanViewProfile(ctx context.Context, viewerID uuid.UUID, subjectIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	ctx = wrap.WithAction(wrap.WithUserID(ctx, viewerID.String()), types.ActionPrivacyBatchEvaluated)

	ids := uniqueSorted(subjectIDs)
	if len(ids) == 0 {
		return map[uuid.UUID]bool{}, nil
	}

	key := decisionKey(viewerID, ids)
	if cached, ok := cache.GetJSON[map[uuid.UUID]bool](ctx, s.cache, key); ok && len(cached) == len(ids) {
		return cached, nil
	}

	settings, err := s.loadSettings(ctx, ids)
	if err != nil {
		return nil, err
	}

	decisions := s.evaluateAll(ctx, viewerID, ids, settings)
	cache.SetJSON(ctx, s.cache, key, decisions, s.cfg.DecisionTTL)

	s.l.Debug(ctx, "privacy batch evaluated", "subjects", len(ids))
	return decisions, nil
}

// loadSettings reads settings through the cache and fetches every miss in one query.
func (s *Service) loadSettings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.PrivacySettings, error) {
	out := make(map[uuid.UUID]*models.PrivacySettings, len(ids))

	var missing []uuid.UUID
	for _, id := range ids {
		if cached, ok := cache.GetJSON[models.PrivacySettings](ctx, s.cache, settingsKey(id)); ok {
			out[id] = &cached
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	stored, err := s.repo.GetMany(storeCtx, missing)
	if err != nil {
		return nil, unavailable(err)
	}

	for _, id := range missing {
		settings, ok := stored[id]
		if !ok || settings == nil {
			settings = models.DefaultPrivacySettings(id)
		}
		out[id] = settings
		cache.SetJSON(ctx, s.cache, settingsKey(id), settings, s.cfg.SettingsTTL)
	}
	return out, nil
}

func (s *Service) evaluateAll(ctx context.Context, viewerID uuid.UUID, ids []uuid.UUID, settings map[uuid.UUID]*models.PrivacySettings) map[uuid.UUID]bool {
	inputs := make([]EvaluationInput, len(ids))
	subjectLocs := make([]*models.CachedLocation, len(ids))
	needViewerLoc := false

	for i, id := range ids {
		inputs[i] = EvaluationInput{
			ViewerID:  viewerID,
			SubjectID: id,
			Settings:  *settings[id],
		}
		if id != viewerID && inputs[i].Settings.ProfileVisibility == types.VisibilityGeofenced {
			needViewerLoc = true
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)

	var viewerLoc *models.CachedLocation
	if needViewerLoc {
		g.Go(func() error {
			viewerLoc = s.location(gctx, viewerID)
			return nil
		})
	}

	for i := range inputs {
		in := &inputs[i]
		if in.SubjectID == viewerID {
			continue
		}
		switch in.Settings.ProfileVisibility {
		case types.VisibilityGeofenced:
			g.Go(func() error {
				subjectLocs[i] = s.location(gctx, in.SubjectID)
				return nil
			})
		case types.VisibilityFriendsOnly:
			g.Go(func() error {
				in.Connected = s.connected(gctx, viewerID, in.SubjectID)
				return nil
			})
		}
	}
	_ = g.Wait()

	decisions := make(map[uuid.UUID]bool, len(ids))
	for i := range inputs {
		in := inputs[i]
		if viewerLoc != nil && subjectLocs[i] != nil {
			d := geo.HaversineMeters(viewerLoc.Latitude, viewerLoc.Longitude, subjectLocs[i].Latitude, subjectLocs[i].Longitude)
			in.DistanceMeters = &d
		}
		allowed := Evaluate(in)
		decisions[in.SubjectID] = allowed
		metrics.RecordPrivacyDecision(in.Settings.ProfileVisibility.String(), allowed)
	}
	return decisions
}

// location treats a failed lookup like an unknown position.
func (s *Service) location(ctx context.Context, userID uuid.UUID) *models.CachedLocation {
	loc, err := s.locations.CachedLocation(ctx, userID)
	if err != nil {
		s.l.Warn(wrap.WithSubjectID(ctx, userID.String()), "location lookup failed, denying geofenced access", "error", err.Error())
		return nil
	}
	return loc
}

func (s *Service) connected(ctx context.Context, viewerID, subjectID uuid.UUID) bool {
	ok, err := s.graph.AreConnected(ctx, viewerID, subjectID)
	if err != nil {
		s.l.Warn(wrap.WithSubjectID(ctx, subjectID.String()), "relationship lookup failed, denying friends_only access", "error", err.Error())
		return false
	}
	return ok
}

func uniqueSorted(ids []uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return slices.Compact(out)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", types.ErrUnavailable, err)
}
