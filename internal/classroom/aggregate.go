package classroom

import (
	"slices"
	"strings"
)

// DefaultTopPosts is how many posts are kept per course.
const DefaultTopPosts = 5

// TopPosts returns at most n posts ordered by UpdateTime, newest first.
// Timestamps are compared as strings, which matches chronological order for
// the uniform RFC 3339 UTC values Classroom emits. Ties keep input order.
func TopPosts(posts []Post, n int) []Post {
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(a, b Post) int {
		return strings.Compare(b.UpdateTime, a.UpdateTime)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func orDefault(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
