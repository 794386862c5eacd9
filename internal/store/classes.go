package store

import "strings"

func joinClasses(classes []string) string {
	return strings.Join(classes, " ")
}

func splitClasses(s string) []string {
	return strings.Fields(s)
}
