package domain

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// HumanSize formats bytes in decimal units, e.g. "24 MB".
func HumanSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// DescribeDuration spells d out in whole seconds, e.g.
// "1 hour, 2 minutes and 5 seconds".
func DescribeDuration(d time.Duration) string {
	total := int64(d.Round(time.Second) / time.Second)
	if total <= 0 {
		return "0 seconds"
	}
	h, rest := total/3600, total%3600
	m, s := rest/60, rest%60

	switch {
	case h > 0:
		return fmt.Sprintf("%s, %s and %s", plural(h, "hour"), plural(m, "minute"), plural(s, "second"))
	case m > 0:
		return fmt.Sprintf("%s and %s", plural(m, "minute"), plural(s, "second"))
	default:
		return plural(s, "second")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
