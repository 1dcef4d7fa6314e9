package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// prefixedID mints ids like "ORD-1718000000000-3f9a".
func prefixedID(prefix string) func() string {
	return func() string {
		return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:4])
	}
}
