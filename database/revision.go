package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// nextRev mints "<generation>-<32 hex>" with the generation one above prev's.
func nextRev(prev string) string {
	gen := 0
	if i := strings.IndexByte(prev, '-'); i > 0 {
		gen, _ = strconv.Atoi(prev[:i])
	}
	return fmt.Sprintf("%d-%s", gen+1, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// RevGeneration returns the numeric prefix of a revision, 0 when absent.
func RevGeneration(rev string) int {
	i := strings.IndexByte(rev, '-')
	if i <= 0 {
		return 0
	}
	gen, err := strconv.Atoi(rev[:i])
	if err != nil {
		return 0
	}
	return gen
}
