package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"

	"signaldesk/internal/core"
	applog "signaldesk/internal/log"
)

// Claims carried by session tokens.
type Claims struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	UserID string `json:"user_id,omitempty"`
	jwt.StandardClaims
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Type            core.PersonType `json:"type"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Email           string          `json:"email"`
	PhoneNumber     string          `json:"phone_number"`
	Password        string          `json:"password"`
	ConfirmPassword string          `json:"confirm_password"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email"`
	Role      core.Role `json:"role"`
	UserID    string    `json:"user_id,omitempty"`
}

type AuthConfig struct {
	Secret   string
	Delay    time.Duration
	TokenTTL time.Duration
}

// AuthService simulates sign-in: every well-formed login succeeds after a
// fixed delay. Passwords are never stored or checked.
type AuthService struct {
	users  *CollectionService[core.Person]
	secret []byte
	delay  time.Duration
	ttl    time.Duration
	now    func() time.Time
	logger *applog.Logger
}

func NewAuthService(users *CollectionService[core.Person], cfg AuthConfig, logger *applog.Logger) *AuthService {
	if logger == nil {
		logger = applog.Discard()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	logger = logger.WithComponent(applog.ComponentAuth)

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		// Tokens from an unconfigured secret only verify within this process.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(fmt.Sprintf("generate signing key: %v", err))
		}
		logger.Warn("No signing secret configured, using a per-process random key")
	}

	return &AuthService{
		users:  users,
		secret: secret,
		delay:  cfg.Delay,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
		logger: logger,
	}
}

func (a *AuthService) Login(ctx context.Context, req LoginRequest) (Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", core.ErrValidation)
	}
	if err := a.wait(ctx); err != nil {
		return Session{}, err
	}

	role, id := core.RoleUser, ""
	if p, ok := a.findByEmail(email); ok {
		role, id = p.Role, p.ID
	}

	a.logger.InfoContext(ctx, "User signed in", "email", email, "role", string(role))
	return a.issue(email, role, id)
}

func (a *AuthService) Register(ctx context.Context, req RegisterRequest) (core.Person, Session, error) {
	if err := validateRegistration(req); err != nil {
		return core.Person{}, Session{}, err
	}
	if err := a.wait(ctx); err != nil {
		return core.Person{}, Session{}, err
	}

	p, err := a.users.Create(ctx, core.Person{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.TrimSpace(req.Email),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Role:        core.RoleUser,
		Type:        req.Type,
		Active:      true,
	})
	if err != nil {
		return core.Person{}, Session{}, err
	}

	s, err := a.issue(p.Email, p.Role, p.ID)
	if err != nil {
		return core.Person{}, Session{}, err
	}
	a.logger.InfoContext(ctx, "User registered", applog.FieldRecordID, p.ID, "email", p.Email)
	return p, s, nil
}

// Verify parses a bearer token. Any failure wraps core.ErrUnauthorized.
func (a *AuthService) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", core.ErrUnauthorized)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", core.ErrUnauthorized)
	}
	return claims, nil
}

func (a *AuthService) issue(email string, role core.Role, userID string) (Session, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := &Claims{
		Email:  email,
		Role:   string(role),
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
			Subject:   email,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: signed, ExpiresAt: expires, Email: email, Role: role, UserID: userID}, nil
}

func (a *AuthService) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(a.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (a *AuthService) findByEmail(email string) (core.Person, bool) {
	for _, p := range a.users.List() {
		if strings.EqualFold(p.Email, email) {
			return p, true
		}
	}
	return core.Person{}, false
}

func validateRegistration(req RegisterRequest) error {
	missing := []string{}
	for _, f := range []struct{ name, value string }{
		{"type", string(req.Type)},
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"email", req.Email},
		{"phone_number", req.PhoneNumber},
		{"password", req.Password},
		{"confirm_password", req.ConfirmPassword},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", core.ErrValidation, strings.Join(missing, ", "))
	}
	if req.Password != req.ConfirmPassword {
		return fmt.Errorf("%w: passwords do not match", core.ErrValidation)
	}
	return nil
}
