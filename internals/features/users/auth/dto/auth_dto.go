package dto

import (
	"time"

	"github.com/google/uuid"

	userModel "colegio_backend/internals/features/users/user/model"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// slug of the school; only needed when the e-mail exists in several tenants
	Tenant string `json:"tenant" validate:"omitempty,max=120"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
	Tenant  string `json:"tenant" validate:"omitempty,max=120"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

type UserSummary struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"tenantId,omitempty"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Role      string     `json:"role"`
	ProfileID *uuid.UUID `json:"profileId,omitempty"`
}

func FromUser(u userModel.User) UserSummary {
	return UserSummary{
		ID:        u.UserID,
		TenantID:  u.UserTenantID,
		Email:     u.UserEmail,
		FullName:  u.UserFullName,
		Role:      u.UserRole,
		ProfileID: u.UserProfileID,
	}
}

type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        UserSummary `json:"user"`
}

type TenantSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	LogoURL     *string   `json:"logoUrl,omitempty"`
	PaymentType string    `json:"paymentType"`
}

type MeResponse struct {
	User   UserSummary    `json:"user"`
	Tenant *TenantSummary `json:"tenant,omitempty"`
	// capabilities of the role, for the frontend menu
	Capabilities []string `json:"capabilities"`
}
