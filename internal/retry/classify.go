package retry

import "strings"

// ErrorKind buckets an error by string-matching keywords in its message
// (the upstream scrapers and providers this system depends on don't expose
// typed errors uniformly).
type ErrorKind string

const (
	KindTimeout         ErrorKind = "TIMEOUT"
	KindNetworkError    ErrorKind = "NETWORK_ERROR"
	KindRateLimited     ErrorKind = "RATE_LIMITED"
	KindNavigationError ErrorKind = "NAVIGATION_ERROR"
	KindSelectorError   ErrorKind = "SELECTOR_ERROR"
	KindParseError      ErrorKind = "PARSE_ERROR"
	KindUnknown         ErrorKind = "UNKNOWN"
)

// retryableKinds is the set of kinds the retry handler will back off and
// reattempt; everything else rethrows immediately.
var retryableKinds = map[ErrorKind]bool{
	KindTimeout:      true,
	KindNetworkError: true,
	KindRateLimited:  true,
}

// keywordTable maps a lowercase substring of an error message to its kind.
// Checked in order; first match wins.
var keywordTable = []struct {
	substr string
	kind   ErrorKind
}{
	{"rate limit", KindRateLimited},
	{"429", KindRateLimited},
	{"too many requests", KindRateLimited},
	{"timeout", KindTimeout},
	{"timed out", KindTimeout},
	{"deadline exceeded", KindTimeout},
	{"connection refused", KindNetworkError},
	{"connection reset", KindNetworkError},
	{"no such host", KindNetworkError},
	{"network", KindNetworkError},
	{"navigation", KindNavigationError},
	{"navigate", KindNavigationError},
	{"selector", KindSelectorError},
	{"no such element", KindSelectorError},
	{"parse", KindParseError},
	{"unmarshal", KindParseError},
	{"invalid json", KindParseError},
}

// Classify maps an error's message to an ErrorKind via keyword matching.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, entry := range keywordTable {
		if strings.Contains(msg, entry.substr) {
			return entry.kind
		}
	}
	return KindUnknown
}

// IsRetryable reports whether errors of this kind should be retried.
func IsRetryable(kind ErrorKind) bool {
	return retryableKinds[kind]
}
