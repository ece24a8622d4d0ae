package service

import (
	"context"
	"errors"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	tenantModel "colegio_backend/internals/features/tenants/model"
	"colegio_backend/internals/features/users/auth/dto"
	userModel "colegio_backend/internals/features/users/user/model"
	helperAuth "colegio_backend/internals/helpers/auth"
)

var (
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrAmbiguousAccount   = errors.New("el correo pertenece a varios colegios; indica el colegio")
	ErrInactive           = errors.New("tu cuenta está desactivada")
	ErrInvalidGoogleToken = errors.New("token de Google inválido")
	ErrGoogleDisabled     = errors.New("login con Google no configurado")
	ErrWrongPassword      = errors.New("la contraseña actual no es correcta")
)

// GoogleIdentity is what we use from a verified Google ID token.
type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

// GoogleVerifier checks an ID token against the client id.
type GoogleVerifier func(idToken, clientID string) (GoogleIdentity, error)

// VerifyGoogleIDToken verifies signature + audience with Google's public certs.
func VerifyGoogleIDToken(idToken, clientID string) (GoogleIdentity, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{clientID}); err != nil {
		return GoogleIdentity{}, ErrInvalidGoogleToken
	}
	cs, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return GoogleIdentity{}, ErrInvalidGoogleToken
	}
	return GoogleIdentity{Sub: cs.Sub, Email: cs.Email, Name: cs.Name}, nil
}

type Service struct {
	DB             *gorm.DB
	Secret         string
	TTL            time.Duration
	Blacklist      *helperAuth.Blacklist
	GoogleClientID string
	VerifyGoogle   GoogleVerifier
}

func New(db *gorm.DB, secret string, ttl time.Duration, bl *helperAuth.Blacklist, googleClientID string) *Service {
	return &Service{
		DB:             db,
		Secret:         secret,
		TTL:            ttl,
		Blacklist:      bl,
		GoogleClientID: googleClientID,
		VerifyGoogle:   VerifyGoogleIDToken,
	}
}

/* ==========================
   Pure helpers
========================== */

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

// MatchAccounts keeps the candidates whose hash accepts password.
func MatchAccounts(cands []userModel.User, password string) []userModel.User {
	out := make([]userModel.User, 0, 1)
	for _, u := range cands {
		if bcrypt.CompareHashAndPassword([]byte(u.UserPassword), []byte(password)) == nil {
			out = append(out, u)
		}
	}
	return out
}

// PickAccount resolves the single account a login refers to.
func PickAccount(matches []userModel.User) (userModel.User, error) {
	switch len(matches) {
	case 0:
		return userModel.User{}, ErrInvalidCredentials
	case 1:
		if !matches[0].UserIsActive {
			return userModel.User{}, ErrInactive
		}
		return matches[0], nil
	}
	return userModel.User{}, ErrAmbiguousAccount
}

// ClaimsFor maps a user row onto token claims. Unknown role strings are kept raw.
func ClaimsFor(u userModel.User) helperAuth.Claims {
	cl := helperAuth.Claims{
		UserID:    u.UserID,
		TenantID:  u.UserTenantID,
		RawRole:   u.UserRole,
		ProfileID: u.UserProfileID,
	}
	if r, ok := constants.ParseRole(u.UserRole); ok {
		cl.Role = r
	}
	return cl
}

/* ==========================
   Flows
========================== */

func (s *Service) candidates(ctx context.Context, email, tenantSlug string) ([]userModel.User, error) {
	q := s.DB.WithContext(ctx).Model(&userModel.User{}).
		Where("user_email = ?", userModel.NormalizeEmail(email))
	if slug := strings.TrimSpace(tenantSlug); slug != "" {
		q = q.Where("user_tenant_id IN (SELECT tenant_id FROM tenants WHERE LOWER(tenant_slug) = LOWER(?) AND tenant_deleted_at IS NULL)", slug)
	}
	var rows []userModel.User
	err := q.Find(&rows).Error
	return rows, err
}

func (s *Service) issue(ctx context.Context, u userModel.User, now time.Time) (dto.LoginResponse, error) {
	token, exp, err := helperAuth.IssueAccessToken(s.Secret, ClaimsFor(u), s.TTL, now)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	_ = s.DB.WithContext(ctx).Model(&userModel.User{}).
		Where("user_id = ?", u.UserID).
		UpdateColumn("user_last_login_at", now).Error
	return dto.LoginResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp, User: dto.FromUser(u)}, nil
}

func (s *Service) Login(ctx context.Context, req dto.LoginRequest, now time.Time) (dto.LoginResponse, error) {
	cands, err := s.candidates(ctx, req.Email, req.Tenant)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	u, err := PickAccount(MatchAccounts(cands, req.Password))
	if err != nil {
		return dto.LoginResponse{}, err
	}
	return s.issue(ctx, u, now)
}

// LoginGoogle only signs in existing accounts. The first Google login links
// the Google subject to the account with the same e-mail.
func (s *Service) LoginGoogle(ctx context.Context, req dto.GoogleLoginRequest, now time.Time) (dto.LoginResponse, error) {
	if strings.TrimSpace(s.GoogleClientID) == "" || s.VerifyGoogle == nil {
		return dto.LoginResponse{}, ErrGoogleDisabled
	}
	id, err := s.VerifyGoogle(req.IDToken, s.GoogleClientID)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	var linked userModel.User
	err = s.DB.WithContext(ctx).Where("user_google_id = ?", id.Sub).First(&linked).Error
	if err == nil {
		u, err := PickAccount([]userModel.User{linked})
		if err != nil {
			return dto.LoginResponse{}, err
		}
		return s.issue(ctx, u, now)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.LoginResponse{}, err
	}

	if strings.TrimSpace(id.Email) == "" {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}
	cands, err := s.candidates(ctx, id.Email, req.Tenant)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	u, err := PickAccount(cands)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	sub := id.Sub
	if err := s.DB.WithContext(ctx).Model(&userModel.User{}).
		Where("user_id = ?", u.UserID).
		Update("user_google_id", sub).Error; err != nil {
		return dto.LoginResponse{}, err
	}
	u.UserGoogleID = &sub
	return s.issue(ctx, u, now)
}

// Logout revokes raw until its own expiry.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if s.Blacklist == nil || strings.TrimSpace(raw) == "" {
		return nil
	}
	_, exp, err := helperAuth.ParseAccessToken(s.Secret, raw)
	if err != nil {
		return nil
	}
	return s.Blacklist.Add(ctx, raw, exp)
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (dto.MeResponse, error) {
	var u userModel.User
	if err := s.DB.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		return dto.MeResponse{}, err
	}
	out := dto.MeResponse{User: dto.FromUser(u), Capabilities: []string{}}
	if r, ok := constants.ParseRole(u.UserRole); ok {
		for _, c := range constants.CapabilitiesOf(r) {
			out.Capabilities = append(out.Capabilities, string(c))
		}
	}
	if u.UserTenantID != nil {
		var t tenantModel.Tenant
		if err := s.DB.WithContext(ctx).First(&t, "tenant_id = ?", *u.UserTenantID).Error; err == nil {
			out.Tenant = &dto.TenantSummary{
				ID:          t.TenantID,
				Name:        t.TenantName,
				Slug:        t.TenantSlug,
				LogoURL:     t.TenantLogoURL,
				PaymentType: t.TenantPaymentType,
			}
		}
	}
	return out, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	var u userModel.User
	if err := s.DB.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.UserPassword), []byte(req.CurrentPassword)) != nil {
		return ErrWrongPassword
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&userModel.User{}).
		Where("user_id = ?", userID).
		Update("user_password", hash).Error
}

// IsActive backs the JWT middleware's deactivated-account check.
func (s *Service) IsActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	var active bool
	err := s.DB.WithContext(ctx).Model(&userModel.User{}).
		Select("user_is_active").
		Where("user_id = ?", userID).
		Row().Scan(&active)
	return active, err
}
