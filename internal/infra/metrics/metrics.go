package metrics

import "strings"

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
