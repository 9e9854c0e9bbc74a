package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/mcnijman/go-emailaddress"
	"go.uber.org/zap"

	"placement/internal/common"
	"placement/internal/domain/analytics"
	"placement/internal/domain/auth"
	"placement/internal/domain/job"
	"placement/internal/domain/profile"
	"placement/internal/domain/user"
	"placement/internal/security"
)

// AuthService owns accounts, credentials and token issuance.
type AuthService struct {
	users         user.Repository
	students      profile.StudentRepository
	refreshTokens auth.RefreshTokenRepository
	denylist      auth.AccessTokenDenylist
	analytics     analytics.Repository
	jwtProvider   *security.JWTProvider
	notifier      Notifier
	logger        Logger
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           Clock
}

const invitePasswordLength = 12

func NewAuthService(users user.Repository, students profile.StudentRepository, refreshTokens auth.RefreshTokenRepository, denylist auth.AccessTokenDenylist, analytics analytics.Repository, jwtProvider *security.JWTProvider, notifier Notifier, logger Logger, accessTTL, refreshTTL time.Duration) *AuthService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AuthService{
		users:         users,
		students:      students,
		refreshTokens: refreshTokens,
		denylist:      denylist,
		analytics:     analytics,
		jwtProvider:   jwtProvider,
		notifier:      notifier,
		logger:        logOrNop(logger),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

type RegisterInput struct {
	Name            string   `json:"name" validate:"required,min=2,max=100"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string   `json:"confirm_password" validate:"required,eqfield=Password"`
	Department      string   `json:"department" validate:"required,min=2"`
	CGPA            *float64 `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
	Year            string   `json:"year" validate:"omitempty,max=20"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Tokens *auth.TokenPair
	User   *user.User
}

// Register creates a student account with its academic profile and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	department := job.NormalizeDepartment(input.Department)
	if department == job.DepartmentAll || !job.IsKnownDepartment(department) {
		return nil, common.NewValidationError("invalid request", map[string]string{"department": "unknown department"})
	}
	account, err := s.createAccount(ctx, input.Name, input.Email, input.Password, user.RoleStudent)
	if err != nil {
		return nil, err
	}
	studentProfile := profile.StudentProfile{UserID: account.ID, Department: department, Year: strings.TrimSpace(input.Year)}
	if input.CGPA != nil {
		studentProfile.CGPA = *input.CGPA
	}
	if _, err := s.students.Upsert(ctx, studentProfile); err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "auth.registered", UserID: &account.ID, Payload: analyticsPayload(ctx, map[string]string{"role": string(account.Role)})})
	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}
	s.logger.Info("student registered", zap.String("user_id", account.ID.String()))
	return &AuthResult{Tokens: pair, User: account}, nil
}

type AdminInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// RegisterAdmin lets an existing admin add another placement cell member.
func (s *AuthService) RegisterAdmin(ctx context.Context, session auth.Session, input AdminInput) (*user.User, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can register admins", nil)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	account, err := s.createAccount(ctx, input.Name, input.Email, input.Password, user.RoleAdmin)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "auth.admin_registered", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"user_id": account.ID.String()})})
	return account, nil
}

// EnsureAdmin creates the bootstrap admin when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !common.Is(err, common.CodeNotFound) {
		return err
	}
	name := strings.SplitN(user.NormalizeEmail(email), "@", 2)[0]
	account, err := s.createAccount(ctx, name, email, password, user.RoleAdmin)
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("user_id", account.ID.String()))
	return nil
}

type InviteInput struct {
	Emails     string   `json:"emails" validate:"required"`
	Department string   `json:"department" validate:"required"`
	CGPA       *float64 `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
}

type InvitedStudent struct {
	UserID            common.UUID `json:"user_id"`
	Email             string      `json:"email"`
	TemporaryPassword string      `json:"temporary_password,omitempty"`
}

type InviteResult struct {
	Invited []InvitedStudent  `json:"invited"`
	Skipped map[string]string `json:"skipped"`
}

// InviteStudents registers every address found in free text and sends each a temporary password.
// Passwords are returned only when no delivery channel is configured.
func (s *AuthService) InviteStudents(ctx context.Context, session auth.Session, input InviteInput) (*InviteResult, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can register students", nil)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	department := job.NormalizeDepartment(input.Department)
	if department == job.DepartmentAll || !job.IsKnownDepartment(department) {
		return nil, common.NewValidationError("invalid request", map[string]string{"department": "unknown department"})
	}
	addresses := emailaddress.Find([]byte(input.Emails), false)
	if len(addresses) == 0 {
		return nil, common.NewValidationError("invalid request", map[string]string{"emails": "no email addresses found"})
	}
	_, deliveryDisabled := s.notifier.(NopNotifier)
	result := &InviteResult{Invited: []InvitedStudent{}, Skipped: map[string]string{}}
	seen := map[string]struct{}{}
	for _, address := range addresses {
		email := user.NormalizeEmail(address.String())
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		password, err := security.GeneratePassword(invitePasswordLength)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to generate password", err)
		}
		name := address.LocalPart
		account, err := s.createAccount(ctx, name, email, password, user.RoleStudent)
		if err != nil {
			if common.Is(err, common.CodeConflict) {
				result.Skipped[email] = "already registered"
				continue
			}
			return nil, err
		}
		studentProfile := profile.StudentProfile{UserID: account.ID, Department: department}
		if input.CGPA != nil {
			studentProfile.CGPA = *input.CGPA
		}
		if _, err := s.students.Upsert(ctx, studentProfile); err != nil {
			return nil, err
		}
		invited := InvitedStudent{UserID: account.ID, Email: email}
		if deliveryDisabled {
			invited.TemporaryPassword = password
		} else if err := s.notifier.StudentInvited(ctx, email, name, password); err != nil {
			s.logger.Error("invite notification enqueue failed", zap.String("email", email), zap.Error(err))
			invited.TemporaryPassword = password
		}
		result.Invited = append(result.Invited, invited)
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "auth.students_invited", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"invited": fmt.Sprintf("%d", len(result.Invited)), "skipped": fmt.Sprintf("%d", len(result.Skipped))})})
	return result, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	account, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			_ = s.analytics.Create(ctx, analytics.Event{Name: "auth.login_failed", Payload: analyticsPayload(ctx, nil)})
			return nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
		}
		return nil, err
	}
	ok, err := security.CheckPassword(account.PasswordHash, input.Password)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to verify password", err)
	}
	if !ok {
		_ = s.analytics.Create(ctx, analytics.Event{Name: "auth.login_failed", UserID: &account.ID, Payload: analyticsPayload(ctx, nil)})
		return nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
	}
	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "auth.logged_in", UserID: &account.ID, Payload: analyticsPayload(ctx, map[string]string{"role": string(account.Role)})})
	s.logger.Info("user logged in", zap.String("user_id", account.ID.String()), zap.String("role", string(account.Role)))
	return &AuthResult{Tokens: pair, User: account}, nil
}

func (s *AuthService) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, common.NewValidationError("invalid request", map[string]string{"refresh_token": "refresh_token is required"})
	}
	stored, err := s.refreshTokens.GetByToken(ctx, token)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "invalid refresh token", nil)
		}
		return nil, err
	}
	if stored.RevokedAt != nil {
		return nil, s.refreshReused(ctx, stored.UserID)
	}
	now := s.now().UTC()
	if stored.ExpiresAt.Before(now) {
		return nil, common.NewError(common.CodeUnauthorized, "refresh token expired", nil)
	}
	account, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	rotated, err := s.refreshTokens.Revoke(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// another request rotated this token between the read and the revoke
		return nil, s.refreshReused(ctx, stored.UserID)
	}
	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "auth.token_refreshed", UserID: &account.ID, Payload: analyticsPayload(ctx, nil)})
	return &AuthResult{Tokens: pair, User: account}, nil
}

// refreshReused ends every session of a user whose rotated refresh token was presented again.
func (s *AuthService) refreshReused(ctx context.Context, userID common.UUID) error {
	revoked, err := s.refreshTokens.RevokeAll(ctx, userID, s.now().UTC())
	if err != nil {
		return err
	}
	s.logger.Warn("refresh token reuse detected", zap.String("user_id", userID.String()), zap.Int64("revoked", revoked))
	_ = s.analytics.Create(ctx, analytics.Event{Name: "auth.refresh_reused", UserID: &userID, Payload: analyticsPayload(ctx, map[string]string{"revoked": fmt.Sprintf("%d", revoked)})})
	return common.NewError(common.CodeUnauthorized, "refresh token reuse detected", nil)
}

type LogoutInput struct {
	RefreshToken string `json:"refresh_token"`
	Everywhere   bool   `json:"everywhere"`
}

// Logout revokes the presented refresh token, or every refresh token of the
// user when Everywhere is set, and denylists the access token of the session.
func (s *AuthService) Logout(ctx context.Context, session auth.Session, input LogoutInput) error {
	now := s.now().UTC()
	if strings.TrimSpace(input.RefreshToken) != "" {
		stored, err := s.refreshTokens.GetByToken(ctx, input.RefreshToken)
		if err != nil && !common.Is(err, common.CodeNotFound) {
			return err
		}
		if stored != nil {
			if stored.UserID != session.UserID {
				return common.NewError(common.CodeForbidden, "refresh token belongs to another user", nil)
			}
			if _, err := s.refreshTokens.Revoke(ctx, input.RefreshToken, now); err != nil {
				return err
			}
		}
	}
	var revoked int64
	if input.Everywhere {
		count, err := s.refreshTokens.RevokeAll(ctx, session.UserID, now)
		if err != nil {
			return err
		}
		revoked = count
	}
	if s.denylist != nil && session.TokenID != "" {
		ttl := session.ExpiresAt.Sub(s.now())
		if ttl > 0 {
			if err := s.denylist.Revoke(ctx, session.TokenID, ttl); err != nil {
				return common.NewError(common.CodeInternal, "failed to revoke access token", err)
			}
		}
	}
	s.logger.Info("user logged out", zap.String("user_id", session.UserID.String()), zap.Bool("everywhere", input.Everywhere), zap.Int64("refresh_revoked", revoked))
	_ = s.analytics.Create(ctx, analytics.Event{Name: "auth.logged_out", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"everywhere": fmt.Sprintf("%t", input.Everywhere)})})
	return nil
}

func (s *AuthService) Me(ctx context.Context, session auth.Session) (*user.User, error) {
	return s.users.GetByID(ctx, session.UserID)
}

func (s *AuthService) createAccount(ctx context.Context, name, email, password string, role user.Role) (*user.User, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	return s.users.Create(ctx, user.User{
		Email:        user.NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
	})
}

func (s *AuthService) issueTokens(ctx context.Context, account *user.User) (*auth.TokenPair, error) {
	accessToken, claims, err := s.jwtProvider.Generate(account.ID, string(account.Role), s.accessTTL)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to generate access token", err)
	}
	refreshValue, err := generateRefreshToken()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to generate refresh token", err)
	}
	now := s.now().UTC()
	refresh := auth.RefreshToken{
		ID:        common.NewUUID(),
		UserID:    account.ID,
		Token:     refreshValue,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.refreshTokens.Store(ctx, refresh); err != nil {
		return nil, err
	}
	return &auth.TokenPair{AccessToken: accessToken, RefreshToken: refreshValue, ExpiresAt: claims.ExpiresAt()}, nil
}

func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", b), nil
}
