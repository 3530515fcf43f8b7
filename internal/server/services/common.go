package services

import (
	"errors"
	"strings"

	"github.com/1anshu-stack/backend/internal/common"
)

func NormalizeUsername(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// storeError classifies a repository error for API callers.
func storeError(err error, notFoundMsg, upstreamMsg string) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		e := common.NotFound(notFoundMsg)
		e.Err = err
		return e
	case errors.Is(err, common.ErrorAlreadyExists):
		e := common.Conflict("Username or email is already taken")
		e.Err = err
		return e
	default:
		return common.Upstream(upstreamMsg, err)
	}
}
