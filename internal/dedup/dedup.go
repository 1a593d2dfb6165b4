// Package dedup prevents the same vocabulary term from being scheduled
// twice under different spellings. Exact duplicates are caught through a
// normalized key; near-duplicates (OCR noise, generation variance) through
// a Levenshtein similarity score. Fuzzy matches are advisory only — user
// data is never dropped because of a similarity score.
package dedup

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the similarity score at or above which two terms are
// considered duplicates. A tunable policy constant, not derived.
const DefaultThreshold = 85

// articles are determiner tokens stripped from the front of a term before
// keying, so "der Tisch" and "Tisch" collide.
var articles = map[string]bool{
	"der": true, "die": true, "das": true,
	"ein": true, "eine": true,
	"the": true, "a": true, "an": true,
}

// Normalize derives the canonical dedup key for a term: lowercased,
// whitespace collapsed, leading article removed, everything but letters,
// digits and spaces stripped. Diacritics and special letters (ä, ö, ü, ß)
// survive. Normalize is idempotent.
func Normalize(term string) string {
	s := strings.ToLower(strings.TrimSpace(term))

	fields := strings.Fields(s)
	if len(fields) > 1 && articles[fields[0]] {
		fields = fields[1:]
	}
	s = strings.Join(fields, " ")

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return -1
	}, s)

	// Character stripping can leave runs of spaces behind ("x - y").
	return strings.Join(strings.Fields(s), " ")
}

// Similarity scores how alike two strings are on a 0..100 scale, derived
// from their Levenshtein distance relative to the longer string. Identical
// inputs short-circuit to 100 without computing a distance. The score is
// symmetric in its arguments.
func Similarity(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := int(math.Round((1 - float64(dist)/float64(maxLen)) * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// IsDuplicate reports whether a and b meet the given similarity threshold
func IsDuplicate(a, b string, threshold int) bool {
	return Similarity(a, b) >= threshold
}

// Match pairs a candidate term with its similarity to the target
type Match struct {
	Candidate  string `json:"candidate"`
	Similarity int    `json:"similarity"`
}

// FindBestMatches scores the target against every candidate, drops scores
// below minSimilarity, sorts descending and keeps at most topN results.
// Used for "did you mean the existing card X?" suggestions.
func FindBestMatches(target string, candidates []string, topN, minSimilarity int) []Match {
	var matches []Match
	for _, c := range candidates {
		if score := Similarity(target, c); score >= minSimilarity {
			matches = append(matches, Match{Candidate: c, Similarity: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if topN > 0 && len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

// BatchResult partitions a batch of terms into first-seen and duplicate
type BatchResult struct {
	Unique     []string `json:"unique"`
	Duplicates []string `json:"duplicates"`
}

// CheckMany checks each term against the existing key set and against the
// terms already accepted earlier in the same batch, so ["Tisch", "tisch"]
// reports the second as a duplicate even against empty storage. Keys in
// existing must already be normalized.
func CheckMany(terms []string, existing map[string]bool) BatchResult {
	seen := make(map[string]bool, len(existing)+len(terms))
	for k := range existing {
		seen[k] = true
	}

	var result BatchResult
	for _, term := range terms {
		key := Normalize(term)
		if seen[key] {
			result.Duplicates = append(result.Duplicates, term)
			continue
		}
		seen[key] = true
		result.Unique = append(result.Unique, term)
	}
	return result
}
