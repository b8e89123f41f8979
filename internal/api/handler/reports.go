package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trailcast/trailcast/internal/api/response"
	"github.com/trailcast/trailcast/internal/reports"
)

// ReportsHandler serves user trail report endpoints.
type ReportsHandler struct {
	reports *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(svc *reports.Service) *ReportsHandler {
	return &ReportsHandler{reports: svc}
}

// ListReports handles GET /api/trails/{trailID}/reports.
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	trailID := chi.URLParam(r, "trailID")

	list, err := h.reports.ListByTrail(r.Context(), trailID)
	if err != nil {
		if errors.Is(err, reports.ErrInvalidReport) {
			response.BadRequest(w, r, "invalid trail id")
			return
		}
		response.InternalError(w, r, "failed to list reports")
		return
	}

	response.JSON(w, r, http.StatusOK, list)
}

// SubmitReport handles POST /api/trails/{trailID}/reports.
func (h *ReportsHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	trailID := chi.URLParam(r, "trailID")

	var sub reports.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		response.BadRequest(w, r, "invalid request body")
		return
	}

	rep, err := h.reports.Submit(r.Context(), trailID, sub)
	if err != nil {
		if errors.Is(err, reports.ErrInvalidReport) {
			response.BadRequest(w, r, err.Error())
			return
		}
		response.InternalError(w, r, "failed to store report")
		return
	}

	response.JSON(w, r, http.StatusCreated, rep)
}

type voteRequest struct {
	VoteType string `json:"vote_type"`
}

// VoteReport handles POST /api/reports/{reportID}/vote. The vote is keyed
// by the client address, so one vote per report per address; switching
// direction is allowed.
func (h *ReportsHandler) VoteReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := strconv.ParseInt(chi.URLParam(r, "reportID"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "invalid report id")
		return
	}

	req := voteRequest{VoteType: string(reports.VoteUp)}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, r, "invalid request body")
			return
		}
	}

	err = h.reports.Vote(r.Context(), reportID, r.RemoteAddr, reports.VoteType(req.VoteType))
	switch {
	case errors.Is(err, reports.ErrInvalidVote):
		response.BadRequest(w, r, "vote_type must be \"up\" or \"down\"")
	case errors.Is(err, reports.ErrAlreadyVoted):
		response.BadRequest(w, r, "already voted")
	case errors.Is(err, reports.ErrReportNotFound):
		response.NotFound(w, r, "report not found")
	case err != nil:
		response.InternalError(w, r, "failed to record vote")
	default:
		response.JSON(w, r, http.StatusOK, map[string]bool{"ok": true})
	}
}
