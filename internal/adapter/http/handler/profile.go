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

type ProfileService interface {
	BatchGetFilteredProfiles(ctx context.Context, subjectIDs []uuid.UUID, viewerID uuid.UUID) ([]models.FilteredProfile, error)
}

type Profile struct {
	service ProfileService
	l       logger.Logger
}

func NewProfile(service ProfileService, l logger.Logger) *Profile {
	return &Profile{
		service: service,
		l:       l,
	}
}

// Filtered godoc
// @Summary      Profiles as the caller is allowed to see them
// @Description  Subjects the caller may not see, or whose profile could not be loaded, are left out.
// @Tags         Profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.SubjectsReq  true  "Subject ids"
// @Success      200      {object}  map[string][]models.FilteredProfile
// @Failure      422      {object}  map[string]any
// @Failure      503      {object}  map[string]string
// @Router       /profiles/filtered [post]
func (h *Profile) Filtered(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionProfileProjection)

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

	profiles, err := h.service.BatchGetFilteredProfiles(ctx, req.UserIDs, viewer)
	if err != nil {
		logFailure(ctx, h.l, "failed to project profiles", err)
		errorResponse(w, GetCode(err), errorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"profiles": profiles}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
