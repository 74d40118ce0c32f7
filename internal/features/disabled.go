package features

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"

	"ghasreport/internal/config"
)

// FeatureDisabledError reports that a security feature is turned off for
// the queried target. The engine treats it as a skip, not a failure.
type FeatureDisabledError struct {
	Feature    Key
	Scope      config.Scope
	StatusCode int
	Message    string
}

func (e *FeatureDisabledError) Error() string {
	return fmt.Sprintf("%s is not enabled for this %s (HTTP %d: %s)", e.Feature, e.Scope, e.StatusCode, e.Message)
}

// Phrases GitHub uses in error bodies when a feature is turned off. Matched
// case-insensitively against the structured error message, never against
// the rendered error string, so request URLs and wrapping can't produce
// false positives.
var disabledPhrases = []string{
	"secret scanning is not enabled",
	"secret scanning is disabled",
	"dependabot alerts are not enabled",
	"dependabot alerts are disabled",
	"code scanning is not enabled",
	"code scanning is disabled",
	"no analysis found",
	"advanced security must be enabled",
}

// ClassifyFetchError converts a GitHub API error into a
// *FeatureDisabledError when the response indicates the feature is off:
// a 403 or 404 whose message carries a known not-enabled phrase. Every
// other error is returned unchanged.
func ClassifyFetchError(feature Key, scope config.Scope, err error) error {
	if err == nil {
		return nil
	}

	var er *github.ErrorResponse
	if !errors.As(err, &er) || er.Response == nil {
		return err
	}
	status := er.Response.StatusCode
	if status != http.StatusForbidden && status != http.StatusNotFound {
		return err
	}

	msg := strings.ToLower(er.Message)
	for _, phrase := range disabledPhrases {
		if strings.Contains(msg, phrase) {
			return &FeatureDisabledError{
				Feature:    feature,
				Scope:      scope,
				StatusCode: status,
				Message:    er.Message,
			}
		}
	}
	return err
}

// IsDisabled reports whether err (or anything it wraps) is a
// FeatureDisabledError.
func IsDisabled(err error) bool {
	var d *FeatureDisabledError
	return errors.As(err, &d)
}
