package supabaseimpl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/orgball2608/tint-feed/pkg/errors"
	storage_go "github.com/supabase-community/storage-go"
)

var (
	// postgrest reports failures as "(code) message".
	postgrestCode = regexp.MustCompile(`^\(([0-9A-Z]+)\)`)
	// gotrue reports failures as "response status code 400: {...}".
	statusCode = regexp.MustCompile(`status code (\d{3})`)
)

// mapError places an SDK error into the shared error taxonomy.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.IsNetwork(err) {
		return errors.WrapWithCode(errors.ErrNetwork, "network", op+": "+err.Error())
	}

	msg := err.Error()

	var storageErr *storage_go.StorageError
	if errors.As(err, &storageErr) && storageErr.Status != 0 {
		return wrapStatus(storageErr.Status, op, msg)
	}

	if m := postgrestCode.FindStringSubmatch(msg); m != nil {
		switch code := m[1]; {
		case code == "PGRST116":
			return errors.WrapWithCode(errors.ErrNotFound, code, op+": "+msg)
		case code == "23505":
			return errors.WrapWithCode(errors.ErrConflict, code, op+": "+msg)
		case code == "42501" || strings.HasPrefix(code, "PGRST3"):
			return errors.WrapWithCode(errors.ErrUnauthorized, code, op+": "+msg)
		case strings.HasPrefix(code, "22") || strings.HasPrefix(code, "23") || strings.HasPrefix(code, "PGRST1"):
			return errors.WrapWithCode(errors.ErrBadRequest, code, op+": "+msg)
		default:
			return errors.WrapWithCode(errors.ErrServiceUnavailable, code, op+": "+msg)
		}
	}

	if m := statusCode.FindStringSubmatch(msg); m != nil {
		status, _ := strconv.Atoi(m[1])
		return wrapStatus(status, op, msg)
	}

	return errors.Wrap(err, op)
}

func wrapStatus(status int, op, msg string) error {
	code := strconv.Itoa(status)
	lower := strings.ToLower(msg)

	switch {
	case status == 400 && (strings.Contains(lower, "invalid login credentials") || strings.Contains(lower, "invalid_grant")):
		return errors.WrapWithCode(errors.ErrUnauthorized, code, op+": Invalid login credentials")
	case status == 401 || status == 403:
		return errors.WrapWithCode(errors.ErrUnauthorized, code, op+": "+msg)
	case status == 404:
		return errors.WrapWithCode(errors.ErrNotFound, code, op+": "+msg)
	case status == 409 || (status == 422 && strings.Contains(lower, "already registered")):
		return errors.WrapWithCode(errors.ErrConflict, code, op+": "+msg)
	case status == 429:
		return errors.WrapWithCode(errors.ErrRateLimited, code, op+": "+msg)
	case status >= 400 && status < 500:
		return errors.WrapWithCode(errors.ErrBadRequest, code, op+": "+msg)
	default:
		return errors.WrapWithCode(errors.ErrServiceUnavailable, code, op+": "+msg)
	}
}
