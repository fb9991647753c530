package handler

import (
	"strconv"
	"strings"

	claimmodels "fraudgate/internal/claim/models"
	dErrors "fraudgate/pkg/domain-errors"
)

// DecisionRequest is the body of POST /api/admin/decision.
type DecisionRequest struct {
	ClaimID  string `json:"claim_id"`
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

// Parse validates the request and returns the domain decision.
func (r *DecisionRequest) Parse() (claimmodels.Decision, error) {
	r.ClaimID = strings.TrimSpace(r.ClaimID)
	if r.ClaimID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "claim_id is required")
	}
	return claimmodels.ParseDecision(strings.TrimSpace(r.Decision))
}

// parseListQuery reads limit, cursor and status from the query string.
func parseListQuery(limit, cursor string, statuses []string) (claimmodels.ListQuery, error) {
	var q claimmodels.ListQuery
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return q, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer")
		}
		q.Limit = n
	}
	if cursor != "" {
		c, err := claimmodels.DecodeCursor(cursor)
		if err != nil {
			return q, err
		}
		q.After = c
	}
	for _, s := range statuses {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				q.Statuses = append(q.Statuses, claimmodels.Status(part))
			}
		}
	}
	return q.Normalize(), nil
}
