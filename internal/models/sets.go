package models

import (
	"slices"
	"sort"
)

// Owner, installed and platform sets are kept as sorted, duplicate-free
// slices so they serialize deterministically.

func addID(ids []int, id int) []int {
	i, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, i, id)
}

func removeID(ids []int, id int) []int {
	i, found := slices.BinarySearch(ids, id)
	if !found {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}

func hasID(ids []int, id int) bool {
	_, found := slices.BinarySearch(ids, id)
	return found
}

// NormalizeIDs sorts and deduplicates ids in place.
func NormalizeIDs(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	sort.Ints(ids)
	return slices.Compact(ids)
}

// UnionIDs returns the sorted union of a and b.
func UnionIDs(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return NormalizeIDs(out)
}

// SubsetIDs reports whether every id of sub is in set.
func SubsetIDs(sub, set []int) bool {
	for _, id := range sub {
		if !hasID(set, id) {
			return false
		}
	}
	return true
}

// NormalizePlatforms sorts and deduplicates platforms in place.
func NormalizePlatforms(platforms []string) []string {
	if platforms == nil {
		return []string{}
	}
	sort.Strings(platforms)
	return slices.Compact(platforms)
}

// UnionPlatforms returns the sorted union of a and b.
func UnionPlatforms(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return NormalizePlatforms(out)
}
