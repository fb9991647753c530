package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	claimmodels "fraudgate/internal/claim/models"
	"fraudgate/internal/verification/models"
	"fraudgate/internal/verification/service"
	dErrors "fraudgate/pkg/domain-errors"
	"fraudgate/pkg/platform/httputil"
	"fraudgate/pkg/requestcontext"
)

const (
	submittedMessage = "submission received"
	// multipartOverhead leaves room for the text fields next to the file.
	multipartOverhead = 1 << 20
)

// Pipeline runs a submission through verification.
type Pipeline interface {
	Submit(ctx context.Context, sub *models.Submission) (*models.Result, error)
	Redirect() string
}

// Reviewer lists claims and applies operator decisions.
type Reviewer interface {
	List(ctx context.Context, query claimmodels.ListQuery) (*claimmodels.Page, error)
	Decide(ctx context.Context, claimID string, decision claimmodels.Decision, reason string) (*claimmodels.Claim, error)
}

// Handler wires the storefront and operator endpoints to their services.
type Handler struct {
	pipeline       Pipeline
	reviewer       Reviewer
	maxUploadBytes int64
	logger         *slog.Logger
}

func New(pipeline Pipeline, reviewer Reviewer, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = service.DefaultMaxArtifactBytes
	}
	return &Handler{
		pipeline:       pipeline,
		reviewer:       reviewer,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Register mounts the public submission endpoint.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/orders", h.HandleSubmit)
}

// RegisterAdmin mounts operator endpoints. The caller applies admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/api/admin/requests", h.HandleList)
	r.Post("/api/admin/decision", h.HandleDecision)
}

// HandleSubmit handles POST /api/orders multipart uploads.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	sub, err := h.readSubmission(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected submission upload",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.pipeline.Submit(ctx, sub)
	if err != nil {
		if service.IsIdentityBanned(err) {
			httputil.WriteJSON(w, http.StatusForbidden, DeniedResponse{
				Error:    "access_denied",
				Reason:   service.ReasonAccountBanned,
				Redirect: h.pipeline.Redirect(),
			})
			return
		}
		h.logger.ErrorContext(ctx, "submission failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if result.Denied {
		httputil.WriteJSON(w, http.StatusForbidden, DeniedResponse{
			Error:    "verification_failed",
			Reason:   result.Reason,
			Redirect: result.Redirect,
		})
		return
	}

	h.logger.InfoContext(ctx, "submission accepted",
		"request_id", requestID,
		"claim_id", result.ClaimID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{
		Message: submittedMessage,
		ClaimID: result.ClaimID,
		Status:  string(result.Status),
	})
}

func (h *Handler) readSubmission(w http.ResponseWriter, r *http.Request) (*models.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeValidation, "screenshot is too large")
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form")
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "screenshot is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "failed to read screenshot")
	}

	amount, err := models.ParseExpectedAmount(r.FormValue("expectedAmount"))
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	identity := r.FormValue("userEmail")
	if identity == "" {
		identity = requestcontext.Identity(ctx)
	}

	return &models.Submission{
		Artifact:       data,
		MimeType:       mimeTypeOf(header, data),
		Origin:         requestcontext.ClientIP(ctx),
		Identity:       identity,
		ExpectedAmount: amount,
		ContactInfo:    r.FormValue("contactInfo"),
		UserAgent:      requestcontext.UserAgent(ctx),
	}, nil
}

// mimeTypeOf prefers the declared part type and sniffs when it is missing.
func mimeTypeOf(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}
