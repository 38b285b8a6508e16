package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// ErrInvalidToken is returned for tokens this package did not produce.
var ErrInvalidToken = errors.New("invalid pagination token")

const (
	timeFormat = time.RFC3339Nano
	separator  = "|"
)

// EncodeToken builds the keyset cursor that resumes a journal listing after the row
// with the given journal date and creation time. The result is safe in a query string.
func EncodeToken(journalDate time.Time, createdAt time.Time) string {
	raw := journalDate.UTC().Format(timeFormat) + separator + createdAt.UTC().Format(timeFormat)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeToken is the inverse of EncodeToken.
func DecodeToken(token string) (journalDate time.Time, createdAt time.Time, err error) {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidToken
	}
	datePart, createdPart, ok := strings.Cut(string(decoded), separator)
	if !ok {
		return time.Time{}, time.Time{}, ErrInvalidToken
	}
	if journalDate, err = time.Parse(timeFormat, datePart); err != nil {
		return time.Time{}, time.Time{}, ErrInvalidToken
	}
	if createdAt, err = time.Parse(timeFormat, createdPart); err != nil {
		return time.Time{}, time.Time{}, ErrInvalidToken
	}
	return journalDate, createdAt, nil
}
