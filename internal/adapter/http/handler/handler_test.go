package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/internal/service/auth"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	"github.com/google/uuid"
)

var (
	viewer  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	subject = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	other   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

type fakeLocationService struct {
	updateErr error
	gotRadius float64
	gotHours  int
	toggled   map[string]bool
}

func (f *fakeLocationService) UpdateLocation(_ context.Context, userID uuid.UUID, at models.Coordinates, accuracy float64) (*models.LocationRecord, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.LocationRecord{
		UserID:                 userID,
		Location:               models.NewGeoPoint(at.Latitude, at.Longitude),
		Accuracy:               accuracy,
		IsActive:               true,
		LocationSharingEnabled: true,
	}, nil
}

func (f *fakeLocationService) FindNearbyUsers(_ context.Context, _ uuid.UUID, radius float64) ([]models.NearbyUser, error) {
	f.gotRadius = radius
	if radius <= 0 {
		return nil, types.ErrInvalidRadius
	}
	return []models.NearbyUser{{UserID: subject, Distance: 12.34, Coordinates: models.NewGeoPoint(51.1, 71.4)}}, nil
}

func (f *fakeLocationService) GetUserBuilding(context.Context, uuid.UUID) (string, error) {
	return "Main Library", nil
}

func (f *fakeLocationService) ToggleLocationSharing(_ context.Context, _ uuid.UUID, enabled bool) error {
	f.toggled["sharing"] = enabled
	return nil
}

func (f *fakeLocationService) ToggleIncognitoMode(_ context.Context, _ uuid.UUID, enabled bool) error {
	f.toggled["incognito"] = enabled
	return types.ErrLocationNotFound
}

func (f *fakeLocationService) GetLocationHistory(_ context.Context, _ uuid.UUID, hours int) ([]models.LocationHistoryPoint, error) {
	f.gotHours = hours
	return []models.LocationHistoryPoint{}, nil
}

type fakePrivacyService struct {
	patched *models.PrivacySettingsPatch
	err     error
}

func (f *fakePrivacyService) GetPrivacySettings(_ context.Context, userID uuid.UUID) (*models.PrivacySettings, error) {
	return models.DefaultPrivacySettings(userID), f.err
}

func (f *fakePrivacyService) UpdatePrivacySettings(_ context.Context, userID uuid.UUID, patch models.PrivacySettingsPatch) (*models.PrivacySettings, error) {
	f.patched = &patch
	s := patch.Apply(*models.DefaultPrivacySettings(userID))
	return &s, nil
}

func (f *fakePrivacyService) BatchCanViewProfile(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = id == subject
	}
	return out, nil
}

func newRequest(method, target, body string, withViewer bool) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if withViewer {
		r = r.WithContext(models.WithViewer(r.Context(), viewer))
	}
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func testLogger() logger.Logger {
	return logger.New(io.Discard, "test", logger.LevelError)
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrInvalidCoordinates, http.StatusUnprocessableEntity},
		{fmt.Errorf("Service.UpdateLocation: %w", types.ErrUpdateTooSoon), http.StatusTooManyRequests},
		{types.ErrLocationInactive, http.StatusNotFound},
		{fmt.Errorf("%w: %w", types.ErrUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{auth.ErrExpToken, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := GetCode(tt.err); got != tt.want {
			t.Fatalf("GetCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}

	if msg := errorMessage(fmt.Errorf("%w: %w", types.ErrUnavailable, errors.New("dial tcp 10.0.0.1"))); msg != types.ErrUnavailable.Error() {
		t.Fatalf("store details leaked: %q", msg)
	}
}

func TestUpdateLocation(t *testing.T) {
	svc := &fakeLocationService{toggled: map[string]bool{}}
	h := NewLocation(svc, testLogger())

	rec := httptest.NewRecorder()
	h.UpdateLocation(rec, newRequest(http.MethodPost, "/locations", `{"latitude":51.09,"longitude":71.39,"accuracy":5}`, true))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["latitude"] != 51.09 || body["longitude"] != 71.39 || body["accuracy"] != float64(5) {
		t.Fatalf("unexpected body %v", body)
	}

	tests := []struct {
		name   string
		body   string
		viewer bool
		err    error
		want   int
	}{
		{"anonymous", `{"latitude":1,"longitude":1}`, false, nil, http.StatusUnauthorized},
		{"malformed json", `{"latitude":`, true, nil, http.StatusBadRequest},
		{"unknown field", `{"latitude":1,"longitude":1,"alt":3}`, true, nil, http.StatusBadRequest},
		{"missing longitude", `{"latitude":1}`, true, nil, http.StatusUnprocessableEntity},
		{"latitude out of range", `{"latitude":91,"longitude":1}`, true, nil, http.StatusUnprocessableEntity},
		{"negative accuracy", `{"latitude":1,"longitude":1,"accuracy":-1}`, true, nil, http.StatusUnprocessableEntity},
		{"rate limited", `{"latitude":1,"longitude":1}`, true, types.ErrUpdateTooSoon, http.StatusTooManyRequests},
		{"store down", `{"latitude":1,"longitude":1}`, true, types.ErrUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.updateErr = tt.err
			rec := httptest.NewRecorder()
			h.UpdateLocation(rec, newRequest(http.MethodPost, "/locations", tt.body, tt.viewer))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestFindNearbyQuery(t *testing.T) {
	svc := &fakeLocationService{toggled: map[string]bool{}}
	h := NewLocation(svc, testLogger())

	rec := httptest.NewRecorder()
	h.FindNearby(rec, newRequest(http.MethodGet, "/locations/nearby", "", true))
	if rec.Code != http.StatusOK || svc.gotRadius != defaultNearbyRadius {
		t.Fatalf("status = %d radius = %v", rec.Code, svc.gotRadius)
	}
	users := decode(t, rec)["users"].([]any)
	if len(users) != 1 || users[0].(map[string]any)["distance"] != 12.3 {
		t.Fatalf("users = %v", users)
	}

	rec = httptest.NewRecorder()
	h.FindNearby(rec, newRequest(http.MethodGet, "/locations/nearby?radius=abc", "", true))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.FindNearby(rec, newRequest(http.MethodGet, "/locations/nearby?radius=-5", "", true))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestToggleAndHistory(t *testing.T) {
	svc := &fakeLocationService{toggled: map[string]bool{}}
	h := NewLocation(svc, testLogger())

	rec := httptest.NewRecorder()
	h.ToggleSharing(rec, newRequest(http.MethodPut, "/locations/sharing", `{"enabled":false}`, true))
	if rec.Code != http.StatusOK || svc.toggled["sharing"] {
		t.Fatalf("status = %d toggled = %v", rec.Code, svc.toggled)
	}
	if decode(t, rec)["location_sharing_enabled"] != false {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ToggleSharing(rec, newRequest(http.MethodPut, "/locations/sharing", `{}`, true))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing enabled: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ToggleIncognito(rec, newRequest(http.MethodPut, "/locations/incognito", `{"enabled":true}`, true))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("incognito without a record: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetHistory(rec, newRequest(http.MethodGet, "/locations/history?hours=48", "", true))
	if rec.Code != http.StatusOK || svc.gotHours != 48 {
		t.Fatalf("status = %d hours = %d", rec.Code, svc.gotHours)
	}
}

func TestPrivacySettingsHandlers(t *testing.T) {
	svc := &fakePrivacyService{}
	h := NewPrivacy(svc, testLogger())

	rec := httptest.NewRecorder()
	h.GetSettings(rec, newRequest(http.MethodGet, "/privacy/settings", "", true))
	if rec.Code != http.StatusOK || decode(t, rec)["profile_visibility"] != "geofenced" {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.UpdateSettings(rec, newRequest(http.MethodPatch, "/privacy/settings", `{"profile_visibility":"public","visible_fields":{"bio":false}}`, true))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["profile_visibility"] != "public" || body["visible_fields"].(map[string]any)["bio"] != false {
		t.Fatalf("unexpected body %v", body)
	}

	for _, bad := range []string{`{"profile_visibility":"everyone"}`, `{"visibility_radius":9}`, `{"visibility_radius":5001}`} {
		svc.patched = nil
		rec = httptest.NewRecorder()
		h.UpdateSettings(rec, newRequest(http.MethodPatch, "/privacy/settings", bad, true))
		if rec.Code != http.StatusUnprocessableEntity || svc.patched != nil {
			t.Fatalf("%s: status = %d", bad, rec.Code)
		}
	}
}

func TestCanView(t *testing.T) {
	svc := &fakePrivacyService{}
	h := NewPrivacy(svc, testLogger())

	body := fmt.Sprintf(`{"user_ids":[%q,%q]}`, subject, other)
	rec := httptest.NewRecorder()
	h.CanView(rec, newRequest(http.MethodPost, "/privacy/can-view", body, true))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	decisions := decode(t, rec)["decisions"].(map[string]any)
	if decisions[subject.String()] != true || decisions[other.String()] != false {
		t.Fatalf("decisions = %v", decisions)
	}

	rec = httptest.NewRecorder()
	h.CanView(rec, newRequest(http.MethodPost, "/privacy/can-view", `{"user_ids":[]}`, true))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty list: status = %d", rec.Code)
	}

	svc.err = fmt.Errorf("%w: timeout", types.ErrUnavailable)
	rec = httptest.NewRecorder()
	h.CanView(rec, newRequest(http.MethodPost, "/privacy/can-view", body, true))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store down: status = %d", rec.Code)
	}
}

type fakeProfileService struct{}

func (fakeProfileService) BatchGetFilteredProfiles(_ context.Context, ids []uuid.UUID, _ uuid.UUID) ([]models.FilteredProfile, error) {
	name := "Aigerim"
	seen := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)
	return []models.FilteredProfile{{UserID: ids[0], Online: true, LastSeen: &seen, LocationContext: "On Campus", FirstName: &name}}, nil
}

func TestFilteredProfiles(t *testing.T) {
	h := NewProfile(fakeProfileService{}, testLogger())

	rec := httptest.NewRecorder()
	h.Filtered(rec, newRequest(http.MethodPost, "/profiles/filtered", fmt.Sprintf(`{"user_ids":[%q]}`, subject), true))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	profiles := decode(t, rec)["profiles"].([]any)
	p := profiles[0].(map[string]any)
	if p["first_name"] != "Aigerim" || p["location_context"] != "On Campus" {
		t.Fatalf("profile = %v", p)
	}
	if _, ok := p["bio"]; ok {
		t.Fatalf("hidden fields must be omitted: %v", p)
	}
}

func TestHealthCheck(t *testing.T) {
	h := NewHealth("radar", map[string]Pinger{
		"postgres": func(context.Context) error { return nil },
		"mongo":    func(context.Context) error { return errors.New("no primary") },
	}, testLogger())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	deps := body["dependencies"].(map[string]any)
	if body["status"] != "degraded" || deps["postgres"] != "ok" || deps["mongo"] != "unavailable" {
		t.Fatalf("body = %v", body)
	}
}
