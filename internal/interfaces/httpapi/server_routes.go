package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerChallengeRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	auth := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, h)
	}

	mux.Handle("POST /v1/challenges", auth(handler.CreateChallenge))
	mux.Handle("GET /v1/challenges/{challengeID}", auth(handler.GetChallenge))
	mux.Handle("POST /v1/challenges/{challengeID}/join", auth(handler.JoinChallenge))
	mux.Handle("POST /v1/challenges/{challengeID}/activate", auth(handler.ActivateChallenge))
	mux.Handle("POST /v1/challenges/{challengeID}/cancel", auth(handler.CancelChallenge))
	mux.Handle("POST /v1/challenges/{challengeID}/invitations", auth(handler.InviteToChallenge))
	mux.Handle("GET /v1/challenges/{challengeID}/invite-candidates", auth(handler.ListInviteCandidates))
	mux.Handle("POST /v1/challenges/{challengeID}/submissions", auth(handler.RecordSubmission))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/complete-due", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCompleteDueJob)))
}
