// Package chunk splits key sets into bounded groups so that each group fits
// a backend "value in list" query.
package chunk

import "fmt"

// Split returns consecutive sub-slices of values, each at most size long.
// Concatenating the chunks in order reproduces values exactly. An empty input
// yields no chunks. The chunks alias values; callers must not append to them.
//
// Split panics if size is not positive.
func Split[T any](values []T, size int) [][]T {
	if size <= 0 {
		panic(fmt.Sprintf("chunk: size must be positive, got %d", size))
	}
	if len(values) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		out = append(out, values[start:end:end])
	}
	return out
}

// Distinct returns the unique non-empty values in first-seen order.
func Distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
