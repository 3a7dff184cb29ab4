package ui

import "strconv"

// Money formats a whole-unit amount with thin spacing between digit
// groups, the way the inventory sheets write prices.
func Money(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) > 3 {
		var b []byte
		for i, c := range []byte(s) {
			if i > 0 && (len(s)-i)%3 == 0 {
				b = append(b, ' ')
			}
			b = append(b, c)
		}
		s = string(b)
	}
	if neg {
		return "-" + s
	}
	return s
}
