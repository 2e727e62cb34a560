package orders

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// orderNumberDateLayout renders MMDDYY, the date segment of an order number.
const orderNumberDateLayout = "010206"

// orderNumberPrefix returns the MMDDYY prefix for the given instant (UTC).
func orderNumberPrefix(now time.Time) string {
	return now.UTC().Format(orderNumberDateLayout)
}

// nextOrderNumber assigns the smallest unused positive suffix for the day:
// max over today's numbers plus one, or 1 when none exist. Suffixes that do
// not parse as positive integers are skipped. The scan-then-insert pattern can
// race under concurrent placement; the unique index on order_number surfaces
// the loser as a conflict.
func nextOrderNumber(now time.Time, existing []string) string {
	prefix := orderNumberPrefix(now)
	max := 0
	for _, number := range existing {
		suffix, ok := strings.CutPrefix(number, prefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n <= 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%d", prefix, max+1)
}
