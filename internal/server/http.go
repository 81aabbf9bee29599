package server

import (
	"encoding/json"
	stdhttp "net/http"

	"everkeep/memorial-service/internal/conf"
	"everkeep/memorial-service/internal/errors"
	"everkeep/memorial-service/internal/service"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *conf.Bootstrap,
	authSvc *service.AuthService,
	memorialSvc *service.MemorialService,
	guestbookSvc *service.GuestbookService,
	webhookSvc *service.WebhookService,
	logger log.Logger,
) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
		http.Filter(LocaleFilter()),
		http.ErrorEncoder(customErrorEncoder),
	}
	if c.Server.Http.Addr != "" {
		opts = append(opts, http.Address(c.Server.Http.Addr))
	}
	srv := http.NewServer(opts...)

	registerRoutes(srv, authSvc, memorialSvc, guestbookSvc, webhookSvc)

	srv.Route("/").GET("/health", func(ctx http.Context) error {
		return ctx.Result(200, map[string]string{
			"status":  "ok",
			"service": "memorial-service",
		})
	})

	return srv
}

func customErrorEncoder(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	se := kerrors.FromError(err)
	status := stdhttp.StatusInternalServerError
	response := map[string]interface{}{
		"code":    status,
		"message": "internal server error",
	}

	if se != nil {
		status = mapErrorStatus(int(se.Code))
		response["code"] = se.Code
		response["reason"] = se.Reason
		response["message"] = se.Message
		if len(se.Metadata) > 0 {
			response["metadata"] = se.Metadata
		}
	} else if err != nil {
		response["message"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func mapErrorStatus(code int) int {
	if code >= 100 && code < 600 {
		return code
	}
	switch code {
	case errors.ErrCodeInvalidCredentials, errors.ErrCodeSessionNotFound:
		return stdhttp.StatusUnauthorized
	case errors.ErrCodeQuotaExceeded:
		return stdhttp.StatusForbidden
	case errors.ErrCodeMemorialNotFound, errors.ErrCodeEntryNotFound, errors.ErrCodeOrderNotFound:
		return stdhttp.StatusNotFound
	case errors.ErrCodeEmailTaken, errors.ErrCodeSlugTaken,
		errors.ErrCodeEntryAlreadyModerated, errors.ErrCodePublishLockBusy:
		return stdhttp.StatusConflict
	}
	if code >= 420000 && code < 430000 {
		return stdhttp.StatusBadRequest
	}
	return stdhttp.StatusInternalServerError
}
