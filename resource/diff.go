package resource

import "sort"

// Untranslated returns the entries of source that are missing or empty in
// target, in sorted key order. This is the set a localization run still has
// to pay for.
func Untranslated(source, target *File) *File {
	out := New()

	keys := source.Keys()
	sort.Strings(keys)

	for _, key := range keys {
		if target != nil {
			if v, ok := target.Get(key); ok && v != "" {
				continue
			}
		}
		v, _ := source.Get(key)
		out.Set(key, v)
	}

	return out
}

// DiffStats summarizes the coverage of a target file against its source.
type DiffStats struct {
	Source       int // Keys in the source file
	Translated   int // Keys with a non-empty target value
	Untranslated int // Keys missing or empty in the target
}

// Stats computes coverage statistics for target against source.
func Stats(source, target *File) DiffStats {
	stats := DiffStats{Source: source.Len()}
	for _, key := range source.Keys() {
		if target != nil {
			if v, ok := target.Get(key); ok && v != "" {
				stats.Translated++
				continue
			}
		}
		stats.Untranslated++
	}
	return stats
}
