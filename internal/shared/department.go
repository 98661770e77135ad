package shared

import "strings"

// NormalizeDepartment produces the canonical storage key for a department
// name: lowercase with spaces replaced by underscores. "Civil Works" and
// "civil works" address the same collections.
func NormalizeDepartment(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
