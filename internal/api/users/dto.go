package users

import (
	"curio-server/internal/common/patch"
	"curio-server/internal/domain/users"
)

type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	FullName *string `json:"full_name"`
}

type AdminCreateRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
}

// UpdateMeRequest and AdminUpdateRequest are sparse patches: absent
// fields stay untouched.
type UpdateMeRequest struct {
	Email    patch.Field[string] `json:"email"`
	FullName patch.Field[string] `json:"full_name"`
}

type AdminUpdateRequest struct {
	Email       patch.Field[string] `json:"email"`
	FullName    patch.Field[string] `json:"full_name"`
	Password    patch.Field[string] `json:"password"`
	IsActive    patch.Field[bool]   `json:"is_active"`
	IsSuperuser patch.Field[bool]   `json:"is_superuser"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type UserPublic struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	FullName    *string `json:"full_name,omitempty"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
}

type UsersPublic struct {
	Data  []UserPublic `json:"data"`
	Count int64        `json:"count"`
}

func toPublic(u users.User) UserPublic {
	return UserPublic{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
	}
}
