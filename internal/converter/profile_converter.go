package converter

import (
	"go-shift-coverage/internal/delivery/dto"
	"go-shift-coverage/internal/domain/entity"
)

// ProfileToResponse converts a Profile entity to ProfileResponse DTO
func ProfileToResponse(profile *entity.Profile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}

	return &dto.ProfileResponse{
		ID:         profile.ID,
		Email:      profile.Email,
		FullName:   profile.FullName,
		Role:       string(profile.Role),
		CPSONumber: profile.CPSONumber,
		Specialty:  profile.Specialty,
		Location:   profile.Location,
	}
}

func SessionToResponse(session entity.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		Resolving: session.Resolving,
		Profile:   ProfileToResponse(session.Profile),
	}
}

// UpdateProfileRequestToPatch maps the editable request fields onto a ProfilePatch.
func UpdateProfileRequestToPatch(req *dto.UpdateProfileRequest) entity.ProfilePatch {
	if req == nil {
		return entity.ProfilePatch{}
	}
	return entity.ProfilePatch{
		Email:      req.Email,
		FullName:   req.FullName,
		CPSONumber: req.CPSONumber,
		Specialty:  req.Specialty,
		Location:   req.Location,
	}
}
