package handler

import (
	"net/http"

	"fraudgate/pkg/platform/httputil"
	"fraudgate/pkg/requestcontext"
)

// HandleList handles GET /api/admin/requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	query, err := parseListQuery(q.Get("limit"), q.Get("cursor"), q["status"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.reviewer.List(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list claims",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPage(page))
}

// HandleDecision handles POST /api/admin/decision.
func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[DecisionRequest](w, r, h.logger)
	if !ok {
		return
	}
	decision, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := h.reviewer.Decide(ctx, req.ClaimID, decision, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "operator decision applied",
		"request_id", requestcontext.RequestID(ctx),
		"claim_id", claim.ID,
		"decision", string(decision),
		"admin", requestcontext.Admin(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, DecisionResponse{
		ClaimID: claim.ID,
		Status:  string(claim.Status),
	})
}
