package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/campus-radar/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-radar/pkg/validator"
	"github.com/google/uuid"
)

const (
	defaultNearbyRadius = 1000
	defaultHistoryHours = 24
)

type LocationService interface {
	UpdateLocation(ctx context.Context, userID uuid.UUID, at models.Coordinates, accuracy float64) (*models.LocationRecord, error)
	FindNearbyUsers(ctx context.Context, userID uuid.UUID, radiusMeters float64) ([]models.NearbyUser, error)
	GetUserBuilding(ctx context.Context, userID uuid.UUID) (string, error)
	ToggleLocationSharing(ctx context.Context, userID uuid.UUID, enabled bool) error
	ToggleIncognitoMode(ctx context.Context, userID uuid.UUID, enabled bool) error
	GetLocationHistory(ctx context.Context, userID uuid.UUID, hours int) ([]models.LocationHistoryPoint, error)
}

type Location struct {
	service LocationService
	l       logger.Logger
}

func NewLocation(service LocationService, l logger.Logger) *Location {
	return &Location{
		service: service,
		l:       l,
	}
}

// UpdateLocation godoc
// @Summary      Report the caller's position
// @Description  Upserts the caller's location. Updates closer than the cooldown are rejected with 429.
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.UpdateLocationReq  true  "Current position"
// @Success      200      {object}  dto.LocationResponse
// @Failure      400      {object}  map[string]string
// @Failure      422      {object}  map[string]any
// @Failure      429      {object}  map[string]string
// @Failure      503      {object}  map[string]string
// @Router       /locations [post]
func (h *Location) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionLocationUpdated)

	userID, ok := viewerID(r)
	if !ok {
		unauthorizedResponse(w)
		return
	}

	var req dto.UpdateLocationReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	record, err := h.service.UpdateLocation(ctx, userID, req.Coordinates(), req.AccuracyOrZero())
	if err != nil {
		logFailure(ctx, h.l, "failed to update location", err)
		errorResponse(w, GetCode(err), errorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewLocationResponse(record), nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// FindNearby godoc
// @Summary      Users near the caller
// @Description  Active, sharing users within radius meters of the caller's last location, nearest first.
// @Tags         Locations
// @Produce      json
// @Security     BearerAuth
// @Param        radius  query     number  false  "Search radius in meters"  default(1000)
// @Success      200     {object}  map[string][]dto.NearbyUserResponse
// @Failure      404     {object}  map[string]string
// @Failure      422     {object}  map[string]string
// @Router       /locations/nearby [get]
func (h *Location) FindNearby(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionNearbySearch)

	userID, ok := viewerID(r)
	if !ok {
		unauthorizedResponse(w)
		return
	}

	radius, err := readFloat(r, "radius", defaultNearbyRadius)
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	users, err := h.service.FindNearbyUsers(ctx, userID, radius)
	if err != nil {
		logFailure(ctx, h.l, "failed to find nearby users", err)
		errorResponse(w, GetCode(err), errorMessage(err))
		return
	}

	response := envelope{
		"radius": radius,
		"users":  dto.NewNearbyResponse(users),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// GetBuilding godoc
// @Summary      Building the caller is in
// @Tags         Locations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /locations/building [get]
func (h *Location) GetBuilding(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_user_building")

	userID, ok := viewerID(r)
	if !ok {
		unauthorizedResponse(w)
		return
	}

	building, err := h.service.GetUserBuilding(ctx, userID)
	if err != nil {
		logFailure(ctx, h.l, "failed to resolve building", err)
		errorResponse(w, GetCode(err), errorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"building": building}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// ToggleSharing godoc
// @Summary      Turn location sharing on or off
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.ToggleReq  true  "Desired state"
// @Success      200      {object}  map[string]bool
// @Failure      404      {object}  map[string]string
// @Router       /locations/sharing [put]
func (h *Location) ToggleSharing(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, types.ActionSharingToggled, "location_sharing_enabled", h.service.ToggleLocationSharing)
}

// ToggleIncognito godoc
// @Summary      Hide the caller from nearby searches
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.ToggleReq  true  "Desired state"
// @Success      200      {object}  map[string]bool
// @Failure      404      {object}  map[string]string
// @Router       /locations/incognito [put]
func (h *Location) ToggleIncognito(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, types.ActionIncognitoToggled, "incognito", h.service.ToggleIncognitoMode)
}

func (h *Location) toggle(w http.ResponseWriter, r *http.Request, action, field string, apply func(context.Context, uuid.UUID, bool) error) {
	ctx := wrap.WithAction(r.Context(), action)

	userID, ok := viewerID(r)
	if !ok {
		unauthorizedResponse(w)
		return
	}

	var req dto.ToggleReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := apply(ctx, userID, *req.Enabled); err != nil {
		logFailure(ctx, h.l, "failed to toggle "+field, err)
		errorResponse(w, GetCode(err), errorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{field: *req.Enabled}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// GetHistory godoc
// @Summary      Caller's recent positions
// @Tags         Locations
// @Produce      json
// @Security     BearerAuth
// @Param        hours  query     int  false  "Look-back window, 1 to 168"  default(24)
// @Success      200    {object}  map[string][]models.LocationHistoryPoint
// @Failure      422    {object}  map[string]string
// @Router       /locations/history [get]
func (h *Location) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_location_history")

	userID, ok := viewerID(r)
	if !ok {
		unauthorizedResponse(w)
		return
	}

	hours, err := readInt(r, "hours", defaultHistoryHours)
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	points, err := h.service.GetLocationHistory(ctx, userID, hours)
	if err != nil {
		logFailure(ctx, h.l, "failed to load location history", err)
		errorResponse(w, GetCode(err), errorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"hours": hours, "points": points}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// logFailure logs client mistakes as warnings and everything else as errors.
func logFailure(ctx context.Context, l logger.Logger, msg string, err error) {
	if GetCode(err) < http.StatusInternalServerError {
		l.Warn(wrap.ErrorCtx(ctx, err), msg, "error", err.Error())
		return
	}
	l.Error(wrap.ErrorCtx(ctx, err), msg, err)
}
