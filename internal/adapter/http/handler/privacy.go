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

type PrivacyService interface {
	GetPrivacySettings(ctx context.Context, userID uuid.UUID) (*models.PrivacySettings, error)
	UpdatePrivacySettings(ctx context.Context, userID uuid.UUID, patch models.PrivacySettingsPatch) (*models.PrivacySettings, error)
	BatchCanViewProfile(ctx context.Context, viewerID uuid.UUID, subjectIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type Privacy struct {
	service PrivacyService
	l       logger.Logger
}

func NewPrivacy(service PrivacyService, l logger.Logger) *Privacy {
	return &Privacy{
		service: service,
		l:       l,
	}
}

// GetSettings godoc
// @Summary      Caller's privacy settings
// @Description  Returns stored settings, or the defaults when none were saved.
// @Tags         Privacy
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.PrivacySettings
// @Failure      503  {object}  map[string]string
// @Router       /privacy/settings [get]
func (h *Privacy) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_privacy_settings")

	userID, ok := viewerID(r)
	if !ok {
		unauthorizedResponse(w)
		return
	}

	settings, err := h.service.GetPrivacySettings(ctx, userID)
	if err != nil {
		logFailure(ctx, h.l, "failed to load privacy settings", err)
		errorResponse(w, GetCode(err), errorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, settings, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// UpdateSettings godoc
// @Summary      Change privacy settings
// @Description  Only the fields present in the body are changed.
// @Tags         Privacy
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      models.PrivacySettingsPatch  true  "Fields to change"
// @Success      200      {object}  models.PrivacySettings
// @Failure      400      {object}  map[string]string
// @Failure      422      {object}  map[string]any
// @Router       /privacy/settings [patch]
func (h *Privacy) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionPrivacySettingsUpdate)

	userID, ok := viewerID(r)
	if !ok {
		unauthorizedResponse(w)
		return
	}

	var req dto.UpdatePrivacyReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid privacy settings patch")
		failedValidationResponse(w, v.Errors)
		return
	}

	settings, err := h.service.UpdatePrivacySettings(ctx, userID, req.PrivacySettingsPatch)
	if err != nil {
		logFailure(ctx, h.l, "failed to update privacy settings", err)
		errorResponse(w, GetCode(err), errorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, settings, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// CanView godoc
// @Summary      Which profiles the caller may see
// @Tags         Privacy
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.SubjectsReq  true  "Subject ids"
// @Success      200      {object}  dto.CanViewResponse
// @Failure      422      {object}  map[string]any
// @Failure      503      {object}  map[string]string
// @Router       /privacy/can-view [post]
func (h *Privacy) CanView(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionPrivacyBatchEvaluated)

	viewer, ok := viewerID(r)
	if !ok {
		unauthorizedResponse(w)
		return
	}

	var req dto.SubjectsReq
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

	decisions, err := h.service.BatchCanViewProfile(ctx, viewer, req.UserIDs)
	if err != nil {
		logFailure(ctx, h.l, "failed to evaluate privacy", err)
		errorResponse(w, GetCode(err), errorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewCanViewResponse(req.UserIDs, decisions), nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
