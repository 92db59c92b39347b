package dto

import (
	"fmt"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/pkg/validator"
	"github.com/google/uuid"
)

// MaxBatchSubjects bounds a single can-view or projection request.
const MaxBatchSubjects = 200

type UpdatePrivacyReq struct {
	models.PrivacySettingsPatch
}

func (r *UpdatePrivacyReq) Validate(v *validator.Validator) {
	if r.ProfileVisibility != nil {
		v.Check(validator.PermittedValue(*r.ProfileVisibility, types.Visibilities...),
			"profile_visibility", fmt.Sprintf("must be one of %v", types.Visibilities))
	}
	if r.VisibilityRadius != nil {
		v.Check(*r.VisibilityRadius >= types.MinVisibilityRadius && *r.VisibilityRadius <= types.MaxVisibilityRadius,
			"visibility_radius", fmt.Sprintf("must be between %d and %d", types.MinVisibilityRadius, types.MaxVisibilityRadius))
	}
}

// SubjectsReq names the profiles a viewer wants to look at.
type SubjectsReq struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

func (r *SubjectsReq) Validate(v *validator.Validator) {
	v.Check(len(r.UserIDs) > 0, "user_ids", "must contain at least one id")
	v.Check(len(r.UserIDs) <= MaxBatchSubjects, "user_ids", fmt.Sprintf("must contain at most %d ids", MaxBatchSubjects))
	for _, id := range r.UserIDs {
		if id == uuid.Nil {
			v.AddError("user_ids", "must not contain the nil uuid")
			break
		}
	}
}

// CanViewResponse maps each requested subject id to the decision.
type CanViewResponse struct {
	Decisions map[string]bool `json:"decisions"`
}

func NewCanViewResponse(requested []uuid.UUID, decisions map[uuid.UUID]bool) CanViewResponse {
	out := make(map[string]bool, len(requested))
	for _, id := range requested {
		out[id.String()] = decisions[id]
	}
	return CanViewResponse{Decisions: out}
}
