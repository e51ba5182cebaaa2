package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"notify-gateway/internal/directory/service"
	"notify-gateway/internal/domain"
	dErrors "notify-gateway/pkg/domain-errors"
	"notify-gateway/pkg/platform/httputil"
	"notify-gateway/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the directory operations the handler needs.
type Service interface {
	FetchDirectory(ctx context.Context) ([]domain.Supervisor, error)
}

// Handler serves the supervisor directory.
type Handler struct {
	service      Service
	logger       *slog.Logger
	strictStatus bool
}

// New constructs a directory handler. With strictStatus false, upstream
// failures are reported as 200 with an error body, which is what existing
// clients expect; with strictStatus true they are reported as 502.
func New(service Service, logger *slog.Logger, strictStatus bool) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		strictStatus: strictStatus,
	}
}

// Register mounts directory endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/supervisors", h.HandleList)
}

// HandleList handles GET /api/supervisors.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	supervisors, err := h.service.FetchDirectory(ctx)
	if err != nil {
		status := http.StatusOK
		if h.strictStatus {
			status = http.StatusBadGateway
		}
		h.logger.WarnContext(ctx, "serving directory error payload",
			"request_id", requestcontext.RequestID(ctx),
			"status", status,
			"error", err,
		)

		var fetchErr *service.FetchError
		if errors.As(err, &fetchErr) {
			httputil.WriteErrorStatus(w, status, dErrors.New(dErrors.CodeUnavailable, fetchErr.Message))
			return
		}
		httputil.WriteErrorStatus(w, status, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, supervisors)
}
