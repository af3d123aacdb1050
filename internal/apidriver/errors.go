// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apidriver

import (
	"errors"
	"fmt"
	"strings"
)

// HTTPError is a non-2xx response from the persisted-query endpoint.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("apidriver: http %d: %s", e.Status, body)
}

// NetError wraps a transport-level failure (dial, TLS, read timeout).
type NetError struct{ Cause error }

func (e *NetError) Error() string { return fmt.Sprintf("apidriver: network: %v", e.Cause) }
func (e *NetError) Unwrap() error { return e.Cause }

// JSONError wraps a response-body decode failure.
type JSONError struct{ Cause error }

func (e *JSONError) Error() string { return fmt.Sprintf("apidriver: json: %v", e.Cause) }
func (e *JSONError) Unwrap() error { return e.Cause }

// PersistedQueryError marks a persisted-query mismatch — never retried; the
// caller must refresh the operation's sha256Hash.
type PersistedQueryError struct{ Op, Locale string }

func (e *PersistedQueryError) Error() string {
	return fmt.Sprintf("apidriver: psstore persisted query not found or unsupported; refresh sha256Hash (op=%s locale=%s)", e.Op, e.Locale)
}

// ElasticsearchShardError marks an upstream shard-failure GraphQL error.
type ElasticsearchShardError struct{}

func (*ElasticsearchShardError) Error() string {
	return "apidriver: psstore elasticsearch shard failure"
}

// transientExtensionCode is the GraphQL extension code observed on
// transient upstream errors, alongside the "all shards failed" message.
const transientExtensionCode = "3165954"

// isRetryable reports whether err (or the GraphQL error strings observed in
// a response body) should be retried under the backoff policy.
func isRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 500
	}
	var netErr *NetError
	if errors.As(err, &netErr) {
		return true
	}
	var jsonErr *JSONError
	if errors.As(err, &jsonErr) {
		return true
	}
	var pqErr *PersistedQueryError
	if errors.As(err, &pqErr) {
		return false
	}
	var shardErr *ElasticsearchShardError
	if errors.As(err, &shardErr) {
		return true
	}
	return false
}

// classifyGraphQLErrors inspects the "errors" array of a decoded GraphQL
// response and turns known transient/non-retryable messages into the typed
// errors above so isRetryable and the caller's logging can key off them.
func classifyGraphQLErrors(op, locale string, messages []string, extensionCodes []string) error {
	for _, msg := range messages {
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "persisted query not found") ||
			strings.Contains(lower, "persistedquerynotfound") ||
			strings.Contains(lower, "unsupported persisted query") {
			return &PersistedQueryError{Op: op, Locale: locale}
		}
		if strings.Contains(lower, "all shards failed") {
			return &ElasticsearchShardError{}
		}
	}
	for _, code := range extensionCodes {
		if code == transientExtensionCode {
			return &ElasticsearchShardError{}
		}
	}
	if len(messages) > 0 {
		return fmt.Errorf("apidriver: graphql errors: %s", strings.Join(messages, "; "))
	}
	return nil
}
