package anubis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/riskibarqy/code-challenge/internal/usecase"
)

// isCircuitFailure counts only dependency failures against the breaker; a
// rejected token says nothing about Anubis health.
func isCircuitFailure(err error) bool {
	return usecase.IsRetryable(err)
}

// principalCacheKey never stores the raw bearer token.
func principalCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "anubis:principal:" + hex.EncodeToString(sum[:])
}

// introspectionURL joins the base URL and path. An absolute path wins.
func introspectionURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path = strings.TrimLeft(path, "/"); path == "" {
		return base
	}
	return base + "/" + path
}
