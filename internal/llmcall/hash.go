// Package llmcall records LLM request/response pairs keyed by content hashes,
// so an identical request can reuse a prior response instead of calling the
// provider again.
package llmcall

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hashes holds the hex SHA-256 digests of one request's components. A digest
// is empty when its component was absent.
type Hashes struct {
	System         string
	Task           string
	Supplementary  string
	Response       string
	OverallRequest string
}

// ComputeHashes fingerprints the rendered prompt components of one request.
// The overall request hash is sha256 over the provider id and the rendered
// texts, pipe-separated; the supplementary segment is appended only when a
// supplementary text is present, so adding one always changes the fingerprint.
// Empty strings are treated as absent components.
func ComputeHashes(provider, renderedSystem, renderedTask, renderedSupplementary, response string) Hashes {
	h := Hashes{}
	if renderedSystem != "" {
		h.System = digest(renderedSystem)
	}
	if renderedTask != "" {
		h.Task = digest(renderedTask)
	}
	if renderedSupplementary != "" {
		h.Supplementary = digest(renderedSupplementary)
	}
	if response != "" {
		h.Response = digest(response)
	}

	overall := provider + "|" + renderedSystem + "|" + renderedTask
	if renderedSupplementary != "" {
		overall += "|" + renderedSupplementary
	}
	h.OverallRequest = digest(overall)

	return h
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
