package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFatalAPI marks provider errors that retrying cannot fix: billing,
// quota and credential problems. Callers stop the session instead of
// degrading.
var ErrFatalAPI = errors.New("fatal API error")

// ErrorKind buckets generation failures for telemetry and degradation
// decisions.
type ErrorKind string

const (
	KindTransient      ErrorKind = "transient"
	KindQuota          ErrorKind = "quota"
	KindInvalidRequest ErrorKind = "invalid_request"
)

// GenerationError wraps a provider error with its classification.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrFatalAPI) match quota and invalid-request
// failures without callers knowing the kind taxonomy.
func (e *GenerationError) Is(target error) bool {
	return target == ErrFatalAPI && (e.Kind == KindQuota || e.Kind == KindInvalidRequest)
}

var quotaMarkers = []string{
	"credit balance",
	"rate limit",
	"quota",
	"billing",
	"insufficient funds",
	"429",
}

var invalidMarkers = []string{
	"invalid api key",
	"authentication",
	"unauthorized",
	"invalid request",
	"400",
	"401",
	"403",
}

// classify maps a raw provider error onto an ErrorKind by message
// inspection; langchaingo does not expose typed provider errors.
func classify(err error) ErrorKind {
	msg := strings.ToLower(err.Error())
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return KindQuota
		}
	}
	for _, m := range invalidMarkers {
		if strings.Contains(msg, m) {
			return KindInvalidRequest
		}
	}
	return KindTransient
}

// wrapGenerationError classifies and wraps err; nil passes through.
func wrapGenerationError(err error) error {
	if err == nil {
		return nil
	}
	return &GenerationError{Kind: classify(err), Err: err}
}
