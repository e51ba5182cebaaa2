package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"notify-gateway/internal/directory/provider"
	dirservice "notify-gateway/internal/directory/service"
	"notify-gateway/internal/domain"
	"notify-gateway/internal/notification/schema"
	dErrors "notify-gateway/pkg/domain-errors"
	"notify-gateway/pkg/platform/httputil"
	"notify-gateway/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// MaxBodyBytes bounds the submission body.
const MaxBodyBytes = 64 << 10

// Service defines the submission operation the handler needs.
type Service interface {
	Submit(ctx context.Context, req domain.NotificationRequest) (domain.Acknowledgment, error)
}

// Handler accepts notification requests.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a submission handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts submission endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/submit", h.HandleSubmit)
}

// HandleSubmit handles POST /api/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := schema.Decode(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		h.reject(ctx, w, err)
		return
	}

	ack, err := h.service.Submit(ctx, req)
	if err != nil {
		h.reject(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "notification request accepted",
		"request_id", requestID,
		"supervisor_id", req.Supervisor.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, ack)
}

func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, err error) {
	requestID := requestcontext.RequestID(ctx)

	var vErr *schema.ValidationError
	if errors.As(err, &vErr) {
		h.logger.InfoContext(ctx, "notification request rejected",
			"request_id", requestID,
			"field", vErr.Field,
			"rule", vErr.Rule,
		)
		httputil.WriteError(w, dErrors.Wrap(vErr, dErrors.CodeValidation, vErr.Message))
		return
	}

	var fetchErr *dirservice.FetchError
	if errors.As(err, &fetchErr) {
		h.logger.WarnContext(ctx, "supervisor resolution failed",
			"request_id", requestID,
			"category", fetchErr.Category,
			"error", err,
		)
		code := dErrors.CodeUnavailable
		if fetchErr.Category == provider.ErrorTimeout {
			code = dErrors.CodeTimeout
		}
		httputil.WriteError(w, dErrors.Wrap(fetchErr, code, fetchErr.Message))
		return
	}

	h.logger.ErrorContext(ctx, "notification request failed",
		"request_id", requestID,
		"error", err,
	)
	httputil.WriteError(w, err)
}
