package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ShortCode returns a 6-character uppercase code suitable for displaying to
// players (lobby codes and the like).
func ShortCode() string {
	return strings.ToUpper(uuid.NewString()[:6])
}
