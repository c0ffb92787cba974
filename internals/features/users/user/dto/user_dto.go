// internals/features/users/user/dto/user_dto.go
package dto

import (
	"github.com/google/uuid"

	userModel "pmhub_backend/internals/features/users/user/model"
)

type CreateUserRequest struct {
	UserName     string     `json:"user_name" validate:"required,min=3,max=50"`
	Password     string     `json:"password" validate:"required,min=6,max=100"`
	Email        *string    `json:"email" validate:"omitempty,email"`
	Role         *int       `json:"role" validate:"required,min=0,max=3"`
	TeamLeaderID *uuid.UUID `json:"team_leader_id"`
}

func (r CreateUserRequest) ToModel(hashed string) *userModel.UserModel {
	return &userModel.UserModel{
		UserName:         r.UserName,
		UserPassword:     hashed,
		UserEmail:        r.Email,
		UserRole:         *r.Role,
		UserTeamLeaderID: r.TeamLeaderID,
		UserIsActive:     true,
	}
}

type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=100"`
	Role     *int    `json:"role" validate:"omitempty,min=0,max=3"`
	// uuid all-zero = lepas user dari timnya (set NULL)
	TeamLeaderID *uuid.UUID `json:"team_leader_id"`
	IsActive     *bool      `json:"is_active"`
}

type UserResponse struct {
	UserID           uuid.UUID  `json:"user_id"`
	UserName         string     `json:"user_name"`
	UserEmail        *string    `json:"user_email,omitempty"`
	UserRole         int        `json:"user_role"`
	UserRoleName     string     `json:"user_role_name"`
	UserTeamLeaderID *uuid.UUID `json:"user_team_leader_id,omitempty"`
	UserIsActive     bool       `json:"user_is_active"`
}
