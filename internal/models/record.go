package models

import (
	"strconv"
	"strings"
)

// Record is one parsed CSV row: header name to cell value.
type Record map[string]string

// Line returns the source line recorded by the parser, or 0.
func (r Record) Line() int {
	n, err := strconv.Atoi(r[FieldLine])
	if err != nil {
		return 0
	}
	return n
}

// IsTransient reports whether key is an internal marker.
func IsTransient(key string) bool {
	return strings.HasPrefix(key, TransientPrefix)
}
