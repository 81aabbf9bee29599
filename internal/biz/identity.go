package biz

import (
	"context"
	"strings"
	"time"

	"everkeep/memorial-service/internal/auth"
	"everkeep/memorial-service/internal/conf"
	"everkeep/memorial-service/internal/constants"
	"everkeep/memorial-service/internal/crypto"
	"everkeep/memorial-service/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// Identity is an authenticated person. One identity per email.
type Identity struct {
	ID            string
	Email         string
	EmailVerified bool
	// PasswordHash is empty for identities bootstrapped from a purchase
	// until they set a password.
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IdentityRepo is the identity storage interface. Lookups return (nil, nil)
// when no row matches.
type IdentityRepo interface {
	GetIdentityByEmail(ctx context.Context, email string) (*Identity, error)
	GetIdentityByID(ctx context.Context, id string) (*Identity, error)
	CreateIdentity(ctx context.Context, identity *Identity) error
}

// SessionRepo stores authenticated sessions keyed by opaque token.
// Get returns (nil, nil) when the token is unknown or expired.
type SessionRepo interface {
	SaveSession(ctx context.Context, session *auth.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*auth.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthUsecase bridges purchase verification and direct sign-in into local
// authenticated sessions.
type AuthUsecase struct {
	verification *VerificationUsecase
	identityRepo IdentityRepo
	sessionRepo  SessionRepo
	hasher       crypto.PasswordHasher
	sessionTTL   time.Duration
	log          *log.Helper
}

// NewAuthUsecase creates the auth usecase.
func NewAuthUsecase(
	verification *VerificationUsecase,
	identityRepo IdentityRepo,
	sessionRepo SessionRepo,
	hasher crypto.PasswordHasher,
	c *conf.Bootstrap,
	logger log.Logger,
) *AuthUsecase {
	ttl := constants.DefaultSessionTTL
	if c != nil && c.App != nil && c.App.SessionTTL != "" {
		if parsed, err := time.ParseDuration(c.App.SessionTTL); err == nil && parsed > 0 {
			ttl = parsed
		}
	}
	return &AuthUsecase{
		verification: verification,
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		sessionTTL:   ttl,
		log:          log.NewHelper(logger),
	}
}

// CompletePurchaseLogin exchanges a purchase token for an authenticated
// session, bootstrapping the identity on first use. Idempotent under replay:
// a second call with the same valid token resolves to the same identity via
// the email lookup. No state is written unless verification fully succeeds.
func (uc *AuthUsecase) CompletePurchaseLogin(ctx context.Context, token, emailHint string) (*auth.Session, error) {
	v, err := uc.verification.Verify(ctx, token, emailHint)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(v.Email)
	identity, err := uc.identityRepo.GetIdentityByEmail(ctx, email)
	if err != nil {
		uc.log.Errorf("Failed to look up identity for %s: %v", email, err)
		return nil, err
	}

	if identity == nil {
		now := time.Now().UTC()
		identity = &Identity{
			ID:    uuid.New().String(),
			Email: email,
			// Policy choice: the payment processor collected this email on
			// the receipt, which we accept as verification. No
			// possession-of-inbox check happens here.
			EmailVerified: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uc.identityRepo.CreateIdentity(ctx, identity); err != nil {
			// A concurrent replay of the same link may have won the insert;
			// the unique email index makes the loser re-resolve.
			existing, getErr := uc.identityRepo.GetIdentityByEmail(ctx, email)
			if getErr != nil || existing == nil {
				uc.log.Errorf("Failed to create identity for %s: %v", email, err)
				return nil, err
			}
			identity = existing
		} else {
			uc.log.Infof("Bootstrapped identity %s from order %s", identity.ID, v.OrderID)
		}
	}

	return uc.establishSession(ctx, identity, v.OrderID)
}

// Login is the direct email+password path. No purchase side effects.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	identity, err := uc.identityRepo.GetIdentityByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	if identity == nil || identity.PasswordHash == "" {
		return nil, errors.ErrInvalidCredentials()
	}

	match, err := uc.hasher.VerifyPassword(ctx, password, identity.PasswordHash)
	if err != nil || !match {
		return nil, errors.ErrInvalidCredentials()
	}

	return uc.establishSession(ctx, identity, "")
}

// Register creates an identity with a password. The email stays unverified
// until proven through another channel.
func (uc *AuthUsecase) Register(ctx context.Context, email, password string) (*auth.Session, error) {
	email = strings.ToLower(email)
	existing, err := uc.identityRepo.GetIdentityByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrEmailTaken()
	}

	hash, err := uc.hasher.HashPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	identity := &Identity{
		ID:            uuid.New().String(),
		Email:         email,
		EmailVerified: false,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.identityRepo.CreateIdentity(ctx, identity); err != nil {
		// A concurrent signup may have won the insert on the unique email
		// index between the existence check and the create.
		if existing, getErr := uc.identityRepo.GetIdentityByEmail(ctx, email); getErr == nil && existing != nil {
			return nil, errors.ErrEmailTaken()
		}
		uc.log.Errorf("Failed to create identity for %s: %v", email, err)
		return nil, err
	}

	return uc.establishSession(ctx, identity, "")
}

// Logout invalidates one session token.
func (uc *AuthUsecase) Logout(ctx context.Context, token string) error {
	return uc.sessionRepo.DeleteSession(ctx, token)
}

// SessionFromToken resolves a bearer token to its session.
func (uc *AuthUsecase) SessionFromToken(ctx context.Context, token string) (*auth.Session, error) {
	if token == "" {
		return nil, errors.ErrSessionNotFound()
	}
	session, err := uc.sessionRepo.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.ErrSessionNotFound()
	}
	return session, nil
}

// establishSession writes the session only after every auth condition has
// been met; there is no half-authenticated state to clean up on failure.
func (uc *AuthUsecase) establishSession(ctx context.Context, identity *Identity, orderID string) (*auth.Session, error) {
	session := &auth.Session{
		Token:      uuid.New().String(),
		IdentityID: identity.ID,
		Email:      identity.Email,
		OrderID:    orderID,
	}
	if err := uc.sessionRepo.SaveSession(ctx, session, uc.sessionTTL); err != nil {
		uc.log.Errorf("Failed to save session for identity %s: %v", identity.ID, err)
		return nil, err
	}
	return session, nil
}
