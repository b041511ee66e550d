package httpapi

import "net/http"

func (h *Handler) RunCompleteDueJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCompleteDueJob")
	defer span.End()

	result, err := h.challenges.CompleteDue(ctx)
	if err != nil {
		h.fail(ctx, w, "run complete-due job failed", err)
		return
	}

	h.logger.InfoContext(ctx, "complete-due job finished",
		"due", result.DueCount,
		"completed", result.CompletedCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}
