package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"testing"
)

// --- CategorizeError Tests ---

func TestCategorizeError_NilError(t *testing.T) {
	result := CategorizeError(nil)
	if result != "None" {
		t.Errorf("CategorizeError(nil) = %q, want %q", result, "None")
	}
}

func TestCategorizeError_SentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"MalformedURL", ErrMalformedURL, "Content_MalformedURL"},
		{"BodyTooLarge", ErrBodyTooLarge, "Content_TooLarge"},
		{"RequestCreation", ErrRequestCreation, "Internal_RequestCreation"},
		{"ResponseBodyRead", ErrResponseBodyRead, "Network_BodyRead"},
		{"ConfigValidation", ErrConfigValidation, "Config_Validation"},
		{"Database", ErrDatabase, "Database_Other"},
		{"Filesystem", ErrFilesystem, "Filesystem_Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategorizeError(tt.err)
			if result != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestCategorizeError_WrappedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "WrappedMalformedURL",
			err:      fmt.Errorf("resolving 'http://[::1': %w", ErrMalformedURL),
			expected: "Content_MalformedURL",
		},
		{
			name:     "WrappedFilesystemPermission",
			err:      fmt.Errorf("%w: writing page: %w", ErrFilesystem, os.ErrPermission),
			expected: "Filesystem_Permission",
		},
		{
			name:     "DoubleWrappedFetchError",
			err:      fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", &FetchError{Kind: FetchKindHTTPStatus, StatusCode: 404})),
			expected: "HTTP_404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategorizeError(tt.err)
			if result != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestCategorizeError_FetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      *FetchError
		expected string
	}{
		{"404", &FetchError{Kind: FetchKindHTTPStatus, StatusCode: 404}, "HTTP_404"},
		{"403", &FetchError{Kind: FetchKindHTTPStatus, StatusCode: 403}, "HTTP_403"},
		{"401", &FetchError{Kind: FetchKindHTTPStatus, StatusCode: 401}, "HTTP_401"},
		{"429", &FetchError{Kind: FetchKindHTTPStatus, StatusCode: 429}, "HTTP_429"},
		{"400", &FetchError{Kind: FetchKindHTTPStatus, StatusCode: 400}, "HTTP_4xx"},
		{"500", &FetchError{Kind: FetchKindHTTPStatus, StatusCode: 500}, "HTTP_5xx"},
		{"304", &FetchError{Kind: FetchKindHTTPStatus, StatusCode: 304}, "HTTP_OtherStatus"},
		{"Timeout", &FetchError{Kind: FetchKindTimeout, Err: context.DeadlineExceeded}, "Network_Timeout"},
		{"Refused", &FetchError{Kind: FetchKindTransport, Err: errors.New("dial tcp: connection refused")}, "Network_ConnectionRefused"},
		{"BodyRead", &FetchError{Kind: FetchKindTransport, Err: fmt.Errorf("%w: unexpected EOF", ErrResponseBodyRead)}, "Network_BodyRead"},
		{"TransportOther", &FetchError{Kind: FetchKindTransport, Err: errors.New("weird")}, "Network_Other"},
		{"BodyTooLarge", &FetchError{Kind: FetchKindTransport, Err: fmt.Errorf("%w: exceeds 10 bytes", ErrBodyTooLarge)}, "Content_TooLarge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategorizeError(tt.err)
			if result != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFetchError_Is(t *testing.T) {
	statusErr := &FetchError{Kind: FetchKindHTTPStatus, URL: "http://example.test/", StatusCode: 500}
	if !errors.Is(statusErr, ErrFetch) {
		t.Error("status FetchError should match ErrFetch")
	}
	if !errors.Is(statusErr, ErrFetchHTTPStatus) {
		t.Error("status FetchError should match ErrFetchHTTPStatus")
	}
	if errors.Is(statusErr, ErrFetchTimeout) {
		t.Error("status FetchError should not match ErrFetchTimeout")
	}

	timeoutErr := &FetchError{Kind: FetchKindTimeout, URL: "http://example.test/", Err: context.DeadlineExceeded}
	if !errors.Is(timeoutErr, ErrFetchTimeout) {
		t.Error("timeout FetchError should match ErrFetchTimeout")
	}
	if !errors.Is(timeoutErr, context.DeadlineExceeded) {
		t.Error("timeout FetchError should unwrap to context.DeadlineExceeded")
	}

	wrapped := fmt.Errorf("page: %w", &FetchError{Kind: FetchKindTransport, Err: errors.New("reset")})
	if !errors.Is(wrapped, ErrFetchTransport) {
		t.Error("wrapped transport FetchError should match ErrFetchTransport")
	}
}

func TestFetchError_Message(t *testing.T) {
	err := &FetchError{Kind: FetchKindHTTPStatus, URL: "http://example.test/x", StatusCode: 503}
	if err.Error() != "fetch http://example.test/x: status 503" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	err = &FetchError{Kind: FetchKindTimeout, URL: "http://example.test/x", Err: context.DeadlineExceeded}
	if err.Error() != "fetch http://example.test/x: Timeout: context deadline exceeded" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestCategorizeError_ParsingErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"HTML", fmt.Errorf("%w: parsing HTML from 'x'", ErrParsing), "Content_ParsingHTML"},
		{"YAML", fmt.Errorf("%w: YAML config", ErrParsing), "Content_ParsingYAML"},
		{"Other", ErrParsing, "Content_ParsingOther"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestCategorizeError_ContextErrors(t *testing.T) {
	if got := CategorizeError(context.Canceled); got != "System_ContextCanceled" {
		t.Errorf("CategorizeError(Canceled) = %q", got)
	}
	if got := CategorizeError(context.DeadlineExceeded); got != "System_ContextDeadlineExceeded" {
		t.Errorf("CategorizeError(DeadlineExceeded) = %q", got)
	}
}

func TestCategorizeError_NetworkStrings(t *testing.T) {
	tests := []struct {
		msg      string
		expected string
	}{
		{"dial tcp: lookup foo: no such host", "Network_DNSLookup"},
		{"read: connection reset by peer", "Network_ConnectionReset"},
		{"write: broken pipe", "Network_BrokenPipe"},
		{"tls: handshake failure", "Network_TLS"},
		{"i/o timeout", "Network_TimeoutGeneric"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := CategorizeError(errors.New(tt.msg)); got != tt.expected {
				t.Errorf("CategorizeError(%q) = %q, want %q", tt.msg, got, tt.expected)
			}
		})
	}
}

func TestCategorizeError_NetTimeout(t *testing.T) {
	err := &net.DNSError{Err: "lookup", Name: "x", IsTimeout: true}
	if got := CategorizeError(err); got != "Network_Timeout" {
		t.Errorf("CategorizeError(net timeout) = %q", got)
	}
}

func TestCategorizeError_Unknown(t *testing.T) {
	if got := CategorizeError(errors.New("something odd")); got != "Unknown" {
		t.Errorf("CategorizeError(unknown) = %q, want Unknown", got)
	}
}

// --- Sanitization Tests ---

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple", "hello", "hello"},
		{"WithSlash", "path/to/file", "path_to_file"},
		{"WithColon", "file:name", "file_name"},
		{"ConsecutiveUnderscores", "a___b", "a_b"},
		{"LeadingUnderscore", "_file", "file"},
		{"Empty", "", "untitled"},
		{"OnlyInvalidChars", "<>:", "untitled"},
		{"ControlChars", "file\x01\x02name", "file_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename_LongNames(t *testing.T) {
	longName := ""
	for i := 0; i < 150; i++ {
		longName += "a"
	}
	if result := SanitizeFilename(longName); len(result) > 100 {
		t.Errorf("SanitizeFilename(long) length = %d, want <= 100", len(result))
	}
}

func TestSanitizePathSegment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "a.png", "a.png"},
		{"KeepsUnderscores", "_docs__intro.html", "_docs__intro.html"},
		{"Empty", "", "untitled"},
		{"Dot", ".", "untitled"},
		{"DotDot", "..", "untitled"},
		{"InvalidChars", "a?b*c.js", "a_b_c.js"},
		{"Spaces", "   ", "untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePathSegment(tt.input); got != tt.expected {
				t.Errorf("SanitizePathSegment(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// --- Hash Tests ---

func TestCalculateSHA256(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"EmptyString", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"HelloWorld", "hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateSHA256([]byte(tt.input)); got != tt.expected {
				t.Errorf("CalculateSHA256(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
