package aggregate

import (
	"fmt"
	"strconv"
	"strings"
)

//nolint:gochecknoglobals // Fixed unit ladder
var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB"}

// FormatBytes converts a byte count to a human-readable string by repeated
// division by 1024 while the value is at least 1024 and a larger unit
// remains. Plain bytes print without decimals, larger units with two.
func FormatBytes(n int64) string {
	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", n, byteUnits[unit])
	}
	return fmt.Sprintf("%.2f %s", size, byteUnits[unit])
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
