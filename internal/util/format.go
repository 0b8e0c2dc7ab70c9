package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatPercent 百分比保留两位小数，如 47.82%
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatDelta 带符号的百分点差值，如 +6.11 pp
func FormatDelta(delta float64) string {
	if math.Abs(delta) < 0.005 {
		return "0.00 pp"
	}
	sign := ""
	if delta > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f pp", sign, delta)
}

// FormatCount 千分位整数，如 69,825
func FormatCount(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatCurrency 货币金额，整数部分千分位，小数部分仅在非整时保留两位
func FormatCurrency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := math.Floor(v)
	cents := math.Round((v - whole) * 100)
	if cents >= 100 {
		whole++
		cents = 0
	}
	out := "$" + FormatCount(int64(whole))
	if cents > 0 {
		out += fmt.Sprintf(".%02d", int64(cents))
	}
	return sign + out
}
