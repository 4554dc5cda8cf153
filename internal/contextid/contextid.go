// Package contextid generates and parses context item identifiers.
//
// An identifier has the form <token>@<timestamp>, where token is the first
// segment of a random UUID and timestamp is the UTC creation time in
// ISO-8601 with every ':' replaced by '_' so it is safe as a filename:
//
//	a1b2c3d4@2024-05-01T12_30_00.000Z
package contextid

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localrivet/leaveoff/internal/errortypes"
)

const (
	// Separator joins the random token and the timestamp.
	Separator = "@"

	// Layout matches the millisecond ISO-8601 form produced by JavaScript's
	// Date.prototype.toISOString.
	Layout = "2006-01-02T15:04:05.000Z"

	// TokenLength is the length of the random token (first UUID segment).
	TokenLength = 8
)

var safeReplacer = strings.NewReplacer(":", "_")
var restoreReplacer = strings.NewReplacer("_", ":")

// New returns a fresh identifier stamped with the current time.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a fresh identifier stamped with t.
func NewAt(t time.Time) string {
	token := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return safeReplacer.Replace(token + Separator + t.UTC().Format(Layout))
}

// Parse extracts the creation time embedded in id.
func Parse(id string) (time.Time, error) {
	idx := strings.LastIndex(id, Separator)
	if idx <= 0 || idx == len(id)-1 {
		return time.Time{}, errortypes.ValidationError(errors.New("missing timestamp segment"), "malformed context id").
			WithField("context_id", id)
	}

	stamp := restoreReplacer.Replace(id[idx+len(Separator):])
	t, err := time.Parse(Layout, stamp)
	if err != nil {
		// Accept any RFC 3339 timestamp so items written by other tools still list.
		var rfcErr error
		t, rfcErr = time.Parse(time.RFC3339Nano, stamp)
		if rfcErr != nil {
			return time.Time{}, errortypes.ValidationError(err, "malformed context id timestamp").
				WithField("context_id", id)
		}
	}
	return t.UTC(), nil
}

// Valid reports whether id carries a parseable timestamp.
func Valid(id string) bool {
	_, err := Parse(id)
	return err == nil
}
