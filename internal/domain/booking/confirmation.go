package booking

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ConfirmationPrefix = "PK"
	tokenLength        = 6
	suffixLength       = 4
)

// NewConfirmationCode returns a short shareable code such as PK-3F9A1C-K2QX.
// Randomness alone is not trusted; the bookings table has a unique index on
// the code.
func NewConfirmationCode(now time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:tokenLength]
	suffix := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	if len(suffix) > suffixLength {
		suffix = suffix[len(suffix)-suffixLength:]
	}
	return ConfirmationPrefix + "-" + token + "-" + suffix
}
