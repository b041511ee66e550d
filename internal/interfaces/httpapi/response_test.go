package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/code-challenge/internal/domain/challenge"
	"github.com/riskibarqy/code-challenge/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
	if got, _ := errorObj["message"].(string); !strings.Contains(got, "bad payload") {
		t.Fatalf("expected client error message to be exposed, got %q", got)
	}
	items, _ := errorObj["errors"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one error item, got %v", errorObj["errors"])
	}
	if domain, _ := items[0].(map[string]any)["domain"].(string); domain != errorDomain {
		t.Fatalf("unexpected error domain %q", domain)
	}
}

func TestWriteError_HidesServerSideDetails(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "transient", err: usecase.MarkTransient(errors.New("dial tcp 10.0.0.1:5432: refused"), "lock challenge"), wantStatus: http.StatusServiceUnavailable},
		{name: "unmapped", err: errors.New("dial tcp 10.0.0.1:5432: refused"), wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(context.Background(), rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if strings.Contains(rec.Body.String(), "10.0.0.1") {
				t.Fatalf("response leaked internal details: %s", rec.Body.String())
			}
		})
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{name: "invalid input", err: usecase.ErrInvalidInput, wantStatus: http.StatusBadRequest, wantCode: "INVALID_ARGUMENT", wantReason: "invalidInput"},
		{name: "invalid range", err: challenge.ErrInvalidRange, wantStatus: http.StatusBadRequest, wantCode: "INVALID_ARGUMENT", wantReason: "invalidInput"},
		{name: "invalid challenge", err: challenge.ErrInvalidChallenge, wantStatus: http.StatusBadRequest, wantCode: "INVALID_ARGUMENT", wantReason: "invalidInput"},
		{name: "not found", err: usecase.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND", wantReason: "notFound"},
		{name: "unauthorized", err: usecase.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED", wantReason: "unauthorized"},
		{name: "unauthorized transition", err: challenge.ErrUnauthorizedTransition, wantStatus: http.StatusForbidden, wantCode: "PERMISSION_DENIED", wantReason: "forbidden"},
		{name: "unauthorized invite", err: challenge.ErrUnauthorizedInvite, wantStatus: http.StatusForbidden, wantCode: "PERMISSION_DENIED", wantReason: "forbidden"},
		{name: "already member", err: challenge.ErrAlreadyMember, wantStatus: http.StatusConflict, wantCode: "ALREADY_EXISTS", wantReason: "alreadyMember"},
		{name: "invitation required", err: challenge.ErrInvitationRequired, wantStatus: http.StatusConflict, wantCode: "FAILED_PRECONDITION", wantReason: "invitationRequired"},
		{name: "closed", err: challenge.ErrChallengeClosed, wantStatus: http.StatusConflict, wantCode: "FAILED_PRECONDITION", wantReason: "challengeClosed"},
		{name: "not private", err: challenge.ErrChallengeNotPrivate, wantStatus: http.StatusConflict, wantCode: "FAILED_PRECONDITION", wantReason: "challengeNotPrivate"},
		{name: "state transition", err: challenge.ErrInvalidStateTransition, wantStatus: http.StatusConflict, wantCode: "FAILED_PRECONDITION", wantReason: "invalidStateTransition"},
		{name: "wrapped", err: fmt.Errorf("join: %w", challenge.ErrAlreadyMember), wantStatus: http.StatusConflict, wantCode: "ALREADY_EXISTS", wantReason: "alreadyMember"},
		{name: "transient wins", err: usecase.MarkTransient(usecase.ErrNotFound, "get"), wantStatus: http.StatusServiceUnavailable, wantCode: "UNAVAILABLE", wantReason: "backendUnavailable"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL", wantReason: "internalError"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(context.Background(), tc.err)
			if got.HTTPStatus != tc.wantStatus || got.Status != tc.wantCode || got.Reason != tc.wantReason {
				t.Fatalf("mapError(%v) = %+v, want %d/%s/%s", tc.err, got, tc.wantStatus, tc.wantCode, tc.wantReason)
			}
		})
	}
}
