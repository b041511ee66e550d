package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/code-challenge/internal/usecase"
)

func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createChallengeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.challenges.CreateChallenge(ctx, usecase.CreateChallengeInput{
		OwnerID:              principal.UserID,
		Name:                 req.Name,
		Description:          req.Description,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		MinSubmissionsPerDay: req.MinSubmissionsPerDay,
		PenaltyAmount:        req.PenaltyAmount,
		DifficultyFilter:     req.DifficultyFilter,
		IsPrivate:            req.IsPrivate,
	})
	if err != nil {
		h.fail(ctx, w, "create challenge failed", err, "user_id", principal.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, viewToDTO(view))
}

func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	view, err := h.challenges.GetChallengeWithLeaderboard(ctx, usecase.GetChallengeInput{
		ChallengeID: challengeID,
		ViewerID:    principal.UserID,
	})
	if err != nil {
		h.fail(ctx, w, "get challenge failed", err, "challenge_id", challengeID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, viewToDTO(view))
}

func (h *Handler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	view, err := h.challenges.Join(ctx, usecase.JoinChallengeInput{
		ChallengeID: challengeID,
		UserID:      principal.UserID,
	})
	if err != nil {
		h.fail(ctx, w, "join challenge failed", err, "challenge_id", challengeID, "user_id", principal.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, viewToDTO(view))
}

func (h *Handler) ActivateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ActivateChallenge")
	defer span.End()

	h.transition(w, r.WithContext(ctx), "activate", h.challenges.Activate)
}

func (h *Handler) CancelChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelChallenge")
	defer span.End()

	h.transition(w, r.WithContext(ctx), "cancel", h.challenges.Cancel)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	apply func(context.Context, usecase.ChallengeActionInput) (usecase.ChallengeView, error),
) {
	ctx := r.Context()
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	view, err := apply(ctx, usecase.ChallengeActionInput{
		ChallengeID: challengeID,
		ActorID:     principal.UserID,
	})
	if err != nil {
		h.fail(ctx, w, action+" challenge failed", err, "challenge_id", challengeID, "actor_id", principal.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, viewToDTO(view))
}

func (h *Handler) InviteToChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InviteToChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req inviteRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	result, err := h.challenges.Invite(ctx, usecase.InviteInput{
		ChallengeID: challengeID,
		ActorID:     principal.UserID,
		CandidateID: req.UserID,
	})
	if err != nil {
		h.fail(ctx, w, "invite to challenge failed", err, "challenge_id", challengeID, "candidate_id", req.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, inviteResultDTO{
		Invitation: invitationToDTO(result.Invitation),
		View:       viewToDTO(result.View),
	})
}

func (h *Handler) ListInviteCandidates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListInviteCandidates")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req := listInviteCandidatesRequest{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput))
			return
		}
		req.Limit = limit
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	profiles, err := h.challenges.ListInviteCandidates(ctx, usecase.ListInviteCandidatesInput{
		ChallengeID: challengeID,
		ActorID:     principal.UserID,
		Query:       req.Query,
		Limit:       req.Limit,
	})
	if err != nil {
		h.fail(ctx, w, "list invite candidates failed", err, "challenge_id", challengeID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profilesToDTO(profiles))
}

func (h *Handler) RecordSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordSubmission")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req recordSubmissionRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	count, err := h.challenges.RecordSubmission(ctx, usecase.RecordSubmissionInput{
		ChallengeID: challengeID,
		UserID:      principal.UserID,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		h.fail(ctx, w, "record submission failed", err, "challenge_id", challengeID, "user_id", principal.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, dailyCountDTO{
		Day:   count.Day.UTC().Format(time.DateOnly),
		Count: count.Count,
	})
}
