package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/trust"
)

const (
	defaultTokenTTL         = 24 * time.Hour
	defaultMaxLoginFailures = 5
	defaultFailureWindow    = 30 * time.Minute
	minPasswordLength       = 8
)

// AuthOptions configures token issuing and login throttling.
type AuthOptions struct {
	JWTSecret        string
	TokenTTL         time.Duration
	AdminSignupCode  string // empty disables admin self-registration
	MaxLoginFailures int
	FailureWindow    time.Duration
}

// AuthService implements registration and login.
type AuthService struct {
	accounts ports.AccountRepository
	audit    ports.SecurityLog
	throttle ports.LoginThrottle
	opts     AuthOptions
	log      zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	audit ports.SecurityLog,
	throttle ports.LoginThrottle,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.MaxLoginFailures <= 0 {
		opts.MaxLoginFailures = defaultMaxLoginFailures
	}
	if opts.FailureWindow <= 0 {
		opts.FailureWindow = defaultFailureWindow
	}
	return &AuthService{accounts: accounts, audit: audit, throttle: throttle, opts: opts, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	role := domain.Role(in.Role)

	if len([]rune(name)) < 2 || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidProfile
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if role == domain.RoleAdmin && (s.opts.AdminSignupCode == "" || in.AdminCode != s.opts.AdminSignupCode) {
		return nil, domain.ErrForbidden
	}
	if err := checkPasswordPolicy(in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	score := trust.InitialScore(role)
	account := &domain.Account{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		TrustScore:   score,
		TrustHistory: []domain.TrustHistoryEntry{
			{Score: score, Reason: domain.ReasonAccountCreation, Timestamp: now},
		},
		Status:      domain.StatusActive,
		Permissions: domain.PermissionsFor(role),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, account.ID, domain.EventAccountCreated, map[string]string{
		"email":  email,
		"role":   string(role),
		"method": "email/password",
	})
	s.log.Info().Str("account_id", account.ID).Str("role", string(role)).Msg("account registered")

	return account, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownAccount) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !account.Status.CanAuthenticate() {
		return "", nil, domain.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.handleFailedLogin(ctx, account)
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, account.ID); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("failed to reset login throttle")
	}
	if err := s.accounts.RecordLogin(ctx, account.ID); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("failed to record login")
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}

	s.recordEvent(ctx, account.ID, domain.EventLoginSuccessful, map[string]string{"method": "email/password"})
	return token, account, nil
}

func (s *AuthService) Me(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, actor.ID)
}

// AccountStatus returns the live status of id. Tokens carry no status, so the
// auth middleware asks here on each request.
func (s *AuthService) AccountStatus(ctx context.Context, id string) (domain.AccountStatus, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return account.Status, nil
}

// handleFailedLogin counts the failure and locks the account once the
// threshold is reached inside the window.
func (s *AuthService) handleFailedLogin(ctx context.Context, account *domain.Account) {
	s.recordEvent(ctx, account.ID, domain.EventLoginFailed, map[string]string{"reason": "invalid_password"})

	failures, err := s.throttle.RecordFailure(ctx, account.ID, s.opts.FailureWindow)
	if err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("login throttle unavailable")
		return
	}
	if failures < int64(s.opts.MaxLoginFailures) {
		return
	}

	if err := s.accounts.SetStatus(ctx, account.ID, domain.StatusLocked); err != nil {
		s.log.Error().Err(err).Str("account_id", account.ID).Msg("failed to lock account")
		return
	}
	s.recordEvent(ctx, account.ID, domain.EventAccountLocked, map[string]string{
		"reason":          "Multiple failed login attempts",
		"failed_attempts": itoa64(failures),
	})
	s.log.Warn().Str("account_id", account.ID).Int64("failures", failures).Msg("account locked")
}

func (s *AuthService) generateToken(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"role":  string(account.Role),
		"email": account.Email,
		"exp":   time.Now().Add(s.opts.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.opts.JWTSecret))
}

func (s *AuthService) recordEvent(ctx context.Context, userID, event string, details map[string]string) {
	recordSecurityEvent(ctx, s.audit, s.log, userID, event, details)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkPasswordPolicy requires 8+ characters with upper, lower, digit and symbol.
func checkPasswordPolicy(pw string) error {
	if len(pw) < minPasswordLength {
		return domain.ErrWeakPassword
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return domain.ErrWeakPassword
	}
	return nil
}
