package actions

import (
	"strings"

	"github.com/google/uuid"
)

// newRef issues an external-style reference like "CB-7F3A2C91".
func newRef(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}
