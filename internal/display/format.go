package display

import (
	"fmt"
)

// FormatBytes returns a human-readable size (bytes, KB, MB, GB, TB), dividing
// by 1024 per step. Negative values keep their sign.
func FormatBytes(bytes int64) string {
	units := []string{"bytes", "KB", "MB", "GB", "TB"}
	value := float64(bytes)
	for _, unit := range units[:len(units)-1] {
		if value < 1024.0 && value > -1024.0 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1f %s", value, units[len(units)-1])
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 GB").
func FormatBytesWithSign(bytes int64) string {
	sign := ""
	if bytes > 0 {
		sign = "+ "
	} else if bytes < 0 {
		sign = "- "
		bytes = -bytes
	}
	return sign + FormatBytes(bytes)
}
