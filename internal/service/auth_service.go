package service

import (
	"context"

	"everkeep/memorial-service/internal/auth"
	"everkeep/memorial-service/internal/biz"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// AuthService fronts the session/identity bridge.
type AuthService struct {
	uc *biz.AuthUsecase
}

// NewAuthService creates the auth service.
func NewAuthService(uc *biz.AuthUsecase) *AuthService {
	return &AuthService{uc: uc}
}

type PurchaseLoginRequest struct {
	// Token is the purchase_token query parameter from the redirect URL.
	Token string `json:"purchase_token"`
	Email string `json:"email,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionReply struct {
	Token      string `json:"token"`
	IdentityID string `json:"identity_id"`
	Email      string `json:"email"`
	OrderID    string `json:"order_id,omitempty"`
}

type MeReply struct {
	IdentityID string `json:"identity_id"`
	Email      string `json:"email"`
}

// PurchaseLogin exchanges a purchase token for a session.
func (s *AuthService) PurchaseLogin(ctx context.Context, req *PurchaseLoginRequest) (*SessionReply, error) {
	session, err := s.uc.CompletePurchaseLogin(ctx, req.Token, req.Email)
	if err != nil {
		return nil, err
	}
	return toSessionReply(session), nil
}

// Login is the direct email+password path.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*SessionReply, error) {
	session, err := s.uc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return toSessionReply(session), nil
}

// Register creates an account with a password.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*SessionReply, error) {
	if req.Email == "" || req.Password == "" {
		return nil, kerrors.BadRequest("INVALID_ARGUMENT", "email and password are required")
	}
	session, err := s.uc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return toSessionReply(session), nil
}

// Logout invalidates the presented session token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.uc.Logout(ctx, token)
}

// Me returns the identity bound to the current session.
func (s *AuthService) Me(ctx context.Context) (*MeReply, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, kerrors.Unauthorized("UNAUTHORIZED", "authentication required")
	}
	email, _ := auth.EmailFromContext(ctx)
	return &MeReply{IdentityID: id, Email: email}, nil
}

// SessionFromToken resolves a bearer token; used by the server auth wrapper.
func (s *AuthService) SessionFromToken(ctx context.Context, token string) (*auth.Session, error) {
	return s.uc.SessionFromToken(ctx, token)
}

func toSessionReply(session *auth.Session) *SessionReply {
	return &SessionReply{
		Token:      session.Token,
		IdentityID: session.IdentityID,
		Email:      session.Email,
		OrderID:    session.OrderID,
	}
}
