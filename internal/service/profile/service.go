package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/pkg/clock"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	OnlineWindow = 15 * time.Minute
	OnCampus     = "On Campus"

	defaultParallelism = 8
)

// Service builds profile views with every field the subject chose to hide removed.
type Service struct {
	privacy     PrivacyChecker
	users       UserDirectory
	locations   LocationReader
	buildings   BuildingResolver
	clock       clock.Clock
	parallelism int
	l           logger.Logger
}

func New(privacy PrivacyChecker, users UserDirectory, locations LocationReader, buildings BuildingResolver, clk clock.Clock, l logger.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		privacy:     privacy,
		users:       users,
		locations:   locations,
		buildings:   buildings,
		clock:       clk,
		parallelism: defaultParallelism,
		l:           l,
	}
}

// BatchGetFilteredProfiles returns the profiles viewerID may see, in input order.
// Subjects that fail to project are left out; only a failed privacy check fails the call.
func (s *Service) BatchGetFilteredProfiles(ctx context.Context, subjectIDs []uuid.UUID, viewerID uuid.UUID) ([]models.FilteredProfile, error) {
	ctx = wrap.WithUserID(ctx, viewerID.String())

	allowed, err := s.privacy.BatchCanViewProfile(ctx, viewerID, subjectIDs)
	if err != nil {
		return nil, err
	}

	var visible []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(subjectIDs))
	for _, id := range subjectIDs {
		if _, dup := seen[id]; dup || !allowed[id] {
			continue
		}
		seen[id] = struct{}{}
		visible = append(visible, id)
	}

	results := make([]*models.FilteredProfile, len(visible))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, id := range visible {
		g.Go(func() error {
			p, err := s.project(gctx, id)
			if err != nil {
				s.l.Warn(wrap.WithAction(wrap.WithSubjectID(gctx, id.String()), types.ActionProfileProjection),
					"profile omitted from batch", "error", err.Error())
				return nil
			}
			results[i] = p
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.FilteredProfile, 0, len(visible))
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *Service) project(ctx context.Context, subjectID uuid.UUID) (*models.FilteredProfile, error) {
	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	settings, err := s.privacy.GetPrivacySettings(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load privacy settings: %w", err)
	}

	loc, err := s.locations.CachedLocation(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}

	return s.Project(user, settings, loc), nil
}

// Project builds the view of one subject. loc may be nil.
func (s *Service) Project(user *models.User, settings *models.PrivacySettings, loc *models.CachedLocation) *models.FilteredProfile {
	lastSeen := user.LastSeen
	if loc != nil && !loc.LastSeen.IsZero() {
		t := loc.LastSeen
		lastSeen = &t
	}

	p := &models.FilteredProfile{
		UserID:          user.ID,
		LastSeen:        lastSeen,
		Online:          lastSeen != nil && s.clock.Now().Sub(*lastSeen) <= OnlineWindow,
		LocationContext: OnCampus,
	}

	if settings.ShowExactLocation && loc != nil && s.buildings != nil {
		p.LocationContext = s.buildings.Resolve(loc.Latitude, loc.Longitude)
	}

	fields := settings.VisibleFields
	if fields.Name {
		p.FirstName = ptr(user.FirstName)
		p.LastName = ptr(user.LastName)
	}
	if fields.Photo {
		p.ProfilePictureURL = ptr(user.ProfilePictureURL)
	}
	if fields.Bio {
		p.Bio = ptr(user.Bio)
	}
	if fields.Program {
		p.Program = ptr(user.Program)
	}

	return p
}

func ptr[T any](v T) *T {
	return &v
}
