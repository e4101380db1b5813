// Package names holds the pure string algorithms used to normalize the
// free-text name and location fields found in census spreadsheet exports.
// Everything here is deterministic and side-effect free; the import
// transformers are the only callers.
package names

import (
	"regexp"
	"strings"
	"unicode"
)

// macExceptions are names where "mac" is the stem rather than a prefix, so
// the letter after it stays lowercase ("Mack", not "MacK").
var macExceptions = map[string]bool{
	"mace":   true,
	"macey":  true,
	"macie":  true,
	"mack":   true,
	"mackey": true,
	"mackie": true,
	"macon":  true,
	"macy":   true,
}

var locationPattern = regexp.MustCompile(`^([0-9]+)([A-Za-z]+)$`)

// SplitPatientName splits a patient name into (last, first). A comma splits
// directly ("Smith, John"). Without a comma the last whitespace-delimited
// word is the last name and everything before it is the first name
// ("Mary Jo Smith" -> "Smith", "Mary Jo"). A single token is a last name.
func SplitPatientName(s string) (last, first string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}

	if i := strings.Index(s, ","); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}

	fields := strings.Fields(s)
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[len(fields)-1], strings.Join(fields[:len(fields)-1], " ")
}

// NormalizeCase proper-cases a name. Hyphenated segments are cased
// independently and rejoined ("SMITH-JONES" -> "Smith-Jones"), apostrophes
// start a new capital ("O'BRIEN" -> "O'Brien"), and the Mc/Mac prefixes get
// an interior capital ("MCDONALD" -> "McDonald") unless the name is one of
// the known non-prefix stems ("MACK" -> "Mack"). Idempotent.
func NormalizeCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	words := strings.Fields(s)
	for i, w := range words {
		segments := strings.Split(w, "-")
		for j, seg := range segments {
			segments[j] = normalizeSegment(seg)
		}
		words[i] = strings.Join(segments, "-")
	}
	return strings.Join(words, " ")
}

func normalizeSegment(seg string) string {
	if seg == "" {
		return seg
	}

	runes := []rune(strings.ToLower(seg))
	capNext := true
	for i, r := range runes {
		if r == '\'' {
			capNext = true
			continue
		}
		if capNext {
			runes[i] = unicode.ToUpper(r)
			capNext = false
		}
	}

	lower := strings.ToLower(seg)
	switch {
	case strings.HasPrefix(lower, "mc") && len(runes) > 2:
		runes[2] = unicode.ToUpper(runes[2])
	case strings.HasPrefix(lower, "mac") && len(runes) > 3 && !macExceptions[lower]:
		runes[3] = unicode.ToUpper(runes[3])
	}

	return string(runes)
}

// leading titles and trailing credentials recognized on provider text.
var (
	providerTitles      = map[string]bool{"dr": true, "dr.": true, "doctor": true, "np": true, "np.": true}
	providerCredentials = map[string]bool{"md": true, "do": true, "np": true}
)

// ExtractProviderLastName pulls a last name out of free-text provider fields
// like "Dr. John Smith" or "John Smith, MD". A recognized leading title and/or
// trailing credential is stripped; if several words remain the last one is
// taken. The result is passed through NormalizeCase. A nil or blank input
// returns nil, meaning no provider text was present at all.
func ExtractProviderLastName(s *string) *string {
	if s == nil {
		return nil
	}
	text := strings.TrimSpace(*s)
	if text == "" {
		return nil
	}

	fields := strings.Fields(text)
	if len(fields) > 1 && providerTitles[strings.ToLower(fields[0])] {
		fields = fields[1:]
	}
	if len(fields) > 1 {
		tail := strings.ToLower(strings.TrimSuffix(fields[len(fields)-1], "."))
		if providerCredentials[tail] {
			fields = fields[:len(fields)-1]
			// "Smith," left behind by a credential like "Smith, MD"
			fields[len(fields)-1] = strings.TrimSuffix(fields[len(fields)-1], ",")
		}
	}

	name := fields[len(fields)-1]
	// inline credential without whitespace, e.g. "Smith,MD"
	if i := strings.Index(name, ","); i > 0 {
		rest := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(name[i+1:], ".")))
		if providerCredentials[rest] {
			name = name[:i]
		}
	}

	normalized := NormalizeCase(name)
	if normalized == "" {
		return nil
	}
	return &normalized
}

// ParseLocation splits a compound location like "205AB" into room "205" and
// bed "AB". Anything that is not digits immediately followed by letters
// yields (nil, nil).
func ParseLocation(s string) (room, bed *string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	m := locationPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, nil
	}
	return &m[1], &m[2]
}
