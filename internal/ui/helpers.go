package ui

import (
	"strings"
	"unicode/utf8"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// padRight pads value with spaces to width runes, truncating longer values.
func padRight(value string, width int) string {
	n := utf8.RuneCountInString(value)
	if n >= width {
		return truncate(value, width)
	}
	return value + strings.Repeat(" ", width-n)
}

// window returns the [start, end) slice of a list of n lines that keeps
// cursor visible in size rows.
func window(n, cursor, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start > n-size {
		start = n - size
	}
	return start, start + size
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
