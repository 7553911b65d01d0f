package grest

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// AccessorKey returns the camelCase key an endpoint name is registered under.
//
// The lowercased name is split on every run of non-word characters; the first
// segment is kept as is and every following segment gets an uppercase first
// letter. Empty segments (leading or trailing separators) are dropped.
//
//	AccessorKey("support-tickets") // "supportTickets"
//	AccessorKey("auth/login")      // "authLogin"
//	AccessorKey("/v2/Users")       // "v2Users"
func AccessorKey(name string) string {
	var b strings.Builder
	first := true
	for _, part := range nonWord.Split(strings.ToLower(name), -1) {
		if part == "" {
			continue
		}
		if first {
			b.WriteString(part)
			first = false
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
