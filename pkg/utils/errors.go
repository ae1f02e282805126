package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrMalformedURL     = errors.New("malformed URL")           // Reference could not be resolved against its base
	ErrFetch            = errors.New("fetch failed")            // Parent of every FetchError
	ErrFetchHTTPStatus  = errors.New("non-success HTTP status") // FetchError kind: status outside 2xx
	ErrFetchTimeout     = errors.New("request timed out")       // FetchError kind: per-request deadline hit
	ErrFetchTransport   = errors.New("transport error")         // FetchError kind: DNS, TCP, TLS, body read, size cap
	ErrFilesystem       = errors.New("filesystem error")        // Wraps os errors
	ErrParsing          = errors.New("parsing error")           // Wraps HTML/YAML parsing errors
	ErrDatabase         = errors.New("database error")          // Wraps badger errors
	ErrRequestCreation  = errors.New("failed to create HTTP request")
	ErrResponseBodyRead = errors.New("failed to read response body")
	ErrBodyTooLarge     = errors.New("response body exceeds configured max size")
	ErrConfigValidation = errors.New("configuration validation error")
)

// FetchKind classifies a failed fetch.
type FetchKind int

const (
	FetchKindHTTPStatus FetchKind = iota
	FetchKindTimeout
	FetchKindTransport
)

// String implements fmt.Stringer for logging
func (k FetchKind) String() string {
	switch k {
	case FetchKindHTTPStatus:
		return "HttpStatus"
	case FetchKindTimeout:
		return "Timeout"
	case FetchKindTransport:
		return "Transport"
	}
	return "Unknown"
}

// FetchError describes why a page or asset could not be retrieved.
// It matches ErrFetch and the sentinel for its Kind via errors.Is.
type FetchError struct {
	Kind       FetchKind
	URL        string
	StatusCode int // Only set for FetchKindHTTPStatus
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchKindHTTPStatus:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
		}
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets callers match on ErrFetch or on the kind-specific sentinel.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrFetch:
		return true
	case ErrFetchHTTPStatus:
		return e.Kind == FetchKindHTTPStatus
	case ErrFetchTimeout:
		return e.Kind == FetchKindTimeout
	case ErrFetchTransport:
		return e.Kind == FetchKindTransport
	}
	return false
}

// CategorizeError maps an error to a predefined category string for logging.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.Kind {
		case FetchKindHTTPStatus:
			switch {
			case fetchErr.StatusCode == 404:
				return "HTTP_404"
			case fetchErr.StatusCode == 403:
				return "HTTP_403"
			case fetchErr.StatusCode == 401:
				return "HTTP_401"
			case fetchErr.StatusCode == 429:
				return "HTTP_429"
			case fetchErr.StatusCode >= 500:
				return "HTTP_5xx"
			case fetchErr.StatusCode >= 400:
				return "HTTP_4xx"
			}
			return "HTTP_OtherStatus"
		case FetchKindTimeout:
			return "Network_Timeout"
		case FetchKindTransport:
			if errors.Is(fetchErr.Err, ErrBodyTooLarge) {
				return "Content_TooLarge"
			}
			if errors.Is(fetchErr.Err, ErrResponseBodyRead) {
				return "Network_BodyRead"
			}
			return "Network_" + categorizeNetworkMessage(fetchErr.Err)
		}
	}

	switch {
	case errors.Is(err, ErrMalformedURL):
		return "Content_MalformedURL"
	case errors.Is(err, ErrBodyTooLarge):
		return "Content_TooLarge"
	case errors.Is(err, ErrParsing):
		errMsg := err.Error()
		if strings.Contains(errMsg, "HTML") {
			return "Content_ParsingHTML"
		}
		if strings.Contains(errMsg, "YAML") {
			return "Content_ParsingYAML"
		}
		return "Content_ParsingOther"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		if errors.Is(err, os.ErrExist) {
			return "Filesystem_Exist"
		}
		return "Filesystem_Other"
	case errors.Is(err, ErrDatabase):
		return "Database_Other"
	case errors.Is(err, ErrRequestCreation):
		return "Internal_RequestCreation"
	case errors.Is(err, ErrResponseBodyRead):
		return "Network_BodyRead"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	}

	// --- Fallback checks for common underlying error types/strings ---
	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Network_Timeout"
	}
	if cat := categorizeNetworkMessage(err); cat != "Other" {
		return "Network_" + cat
	}
	return "Unknown"
}

// categorizeNetworkMessage inspects an error message for well-known network failure strings.
func categorizeNetworkMessage(err error) string {
	if err == nil {
		return "Other"
	}
	lowerErrMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lowerErrMsg, "timeout"):
		return "TimeoutGeneric"
	case strings.Contains(lowerErrMsg, "connection refused"):
		return "ConnectionRefused"
	case strings.Contains(lowerErrMsg, "no such host"):
		return "DNSLookup"
	case strings.Contains(lowerErrMsg, "tls") || strings.Contains(lowerErrMsg, "certificate"):
		return "TLS"
	case strings.Contains(lowerErrMsg, "reset by peer"):
		return "ConnectionReset"
	case strings.Contains(lowerErrMsg, "broken pipe"):
		return "BrokenPipe"
	}
	return "Other"
}
