package server

import (
	"context"
	"io"
	"strings"

	"everkeep/memorial-service/internal/auth"
	"everkeep/memorial-service/internal/service"

	"github.com/go-kratos/kratos/v2/transport/http"
)

func registerRoutes(
	srv *http.Server,
	authSvc *service.AuthService,
	memorialSvc *service.MemorialService,
	guestbookSvc *service.GuestbookService,
	webhookSvc *service.WebhookService,
) {
	root := srv.Route("/")

	// Payment webhook. Raw body, signature checked before anything else.
	root.POST("/webhooks/payment", func(ctx http.Context) error {
		payload, err := io.ReadAll(ctx.Request().Body)
		if err != nil {
			return err
		}
		reply, err := webhookSvc.HandlePaymentEvent(ctx, payload, ctx.Header().Get("Stripe-Signature"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	// Auth surface.
	root.POST("/auth/purchase-login", func(ctx http.Context) error {
		var req service.PurchaseLoginRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		// The redirect link carries the credential in the query string.
		if req.Token == "" {
			req.Token = ctx.Query().Get("purchase_token")
		}
		if req.Email == "" {
			req.Email = ctx.Query().Get("email")
		}
		reply, err := authSvc.PurchaseLogin(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.POST("/auth/login", func(ctx http.Context) error {
		var req service.LoginRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := authSvc.Login(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.POST("/auth/register", func(ctx http.Context) error {
		var req service.RegisterRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := authSvc.Register(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.POST("/auth/logout", func(ctx http.Context) error {
		if err := authSvc.Logout(ctx, bearerToken(ctx)); err != nil {
			return err
		}
		return ctx.Result(200, map[string]bool{"ok": true})
	})

	root.GET("/auth/me", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		reply, err := authSvc.Me(authed)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	// Public memorial page and guestbook.
	root.GET("/memorial/{slug}", func(ctx http.Context) error {
		reply, err := memorialSvc.GetPublicMemorial(ctx, ctx.Vars().Get("slug"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.GET("/memorial/{slug}/guestbook", func(ctx http.Context) error {
		m, err := memorialSvc.GetPublicMemorial(ctx, ctx.Vars().Get("slug"))
		if err != nil {
			return err
		}
		reply, err := guestbookSvc.ListPublicEntries(ctx, m.ID)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.POST("/memorial/{slug}/guestbook", func(ctx http.Context) error {
		m, err := memorialSvc.GetPublicMemorial(ctx, ctx.Vars().Get("slug"))
		if err != nil {
			return err
		}
		var req service.SubmitEntryRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := guestbookSvc.SubmitEntry(ctx, m.ID, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	// Owner dashboard surface.
	root.POST("/memorials", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		var req service.MemorialRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := memorialSvc.CreateMemorial(authed, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.GET("/memorials", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		reply, err := memorialSvc.ListMemorials(authed)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.GET("/memorials/can-publish", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		reply, err := memorialSvc.CanPublish(authed)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.GET("/memorials/{id}", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		reply, err := memorialSvc.GetMemorial(authed, ctx.Vars().Get("id"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.PUT("/memorials/{id}", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		var req service.MemorialRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := memorialSvc.UpdateMemorial(authed, ctx.Vars().Get("id"), &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.POST("/memorials/{id}/publish", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		reply, err := memorialSvc.PublishMemorial(authed, ctx.Vars().Get("id"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.DELETE("/memorials/{id}", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		if err := memorialSvc.DeleteMemorial(authed, ctx.Vars().Get("id")); err != nil {
			return err
		}
		return ctx.Result(200, map[string]bool{"ok": true})
	})

	root.GET("/memorials/{id}/guestbook", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		reply, err := guestbookSvc.ListOwnerEntries(authed, ctx.Vars().Get("id"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	root.POST("/guestbook/{entryId}/moderate", func(ctx http.Context) error {
		authed, err := authCtx(ctx, authSvc)
		if err != nil {
			return err
		}
		var req service.ModerateEntryRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := guestbookSvc.ModerateEntry(authed, ctx.Vars().Get("entryId"), &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})
}

// authCtx resolves the bearer token to a session and returns a context
// carrying the authenticated identity.
func authCtx(ctx http.Context, authSvc *service.AuthService) (context.Context, error) {
	session, err := authSvc.SessionFromToken(ctx, bearerToken(ctx))
	if err != nil {
		return nil, err
	}
	return auth.WithIdentity(ctx, session.IdentityID, session.Email), nil
}

func bearerToken(ctx http.Context) string {
	header := ctx.Header().Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}
