package model

import (
	"sort"
	"strings"
)

// Alphabet lists every attribute character that may be queried or changed.
const Alphabet = "aAcCdDeijsStTu"

// AttributeSet is a set of attribute characters, e.g. "ia".
// Comparisons ignore the order of characters.
type AttributeSet string

// ParseAttributeSet validates a user supplied attribute string.
// The string must not be empty and every character must be part of the Alphabet.
func ParseAttributeSet(s string) (AttributeSet, error) {
	if s == "" || !ValidAttributes(s) {
		return "", &ValidationError{Field: "attr", Msg: "Invalid attributes: " + s}
	}
	return AttributeSet(s), nil
}

// ValidAttributes reports whether every character of s is part of the Alphabet.
// The empty string is valid and means "no attributes".
func ValidAttributes(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune(Alphabet, c) {
			return false
		}
	}
	return true
}

// FilterAttributes strips everything that is not an attribute character from
// a raw lsattr column, like the "-" placeholders of unset flags.
func FilterAttributes(raw string) AttributeSet {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, c := range raw {
		if strings.ContainsRune(Alphabet, c) {
			sb.WriteRune(c)
		}
	}
	return AttributeSet(sb.String())
}

func (a AttributeSet) Has(c rune) bool {
	return strings.ContainsRune(string(a), c)
}

// MissingFrom reports whether at least one character of a is not set in current.
func (a AttributeSet) MissingFrom(current AttributeSet) bool {
	for _, c := range a {
		if !current.Has(c) {
			return true
		}
	}
	return false
}

// Intersects reports whether a and current share at least one character.
func (a AttributeSet) Intersects(current AttributeSet) bool {
	for _, c := range a {
		if current.Has(c) {
			return true
		}
	}
	return false
}

// Equal compares both sets without taking the character order into account.
func (a AttributeSet) Equal(b AttributeSet) bool {
	return !a.MissingFrom(b) && !b.MissingFrom(a)
}

func (a AttributeSet) String() string {
	return string(a)
}

// PathAttributes maps a filesystem path to the attributes observed or desired for it.
type PathAttributes map[string]AttributeSet

// Lookup returns the attributes of path.
// A trailing slash of path is ignored when there is no exact match.
func (p PathAttributes) Lookup(path string) (AttributeSet, bool) {
	if a, found := p[path]; found {
		return a, true
	}
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" || trimmed == path {
		return "", false
	}
	a, found := p[trimmed]
	return a, found
}

// Merge copies all entries of other into p, overwriting existing keys.
func (p PathAttributes) Merge(other PathAttributes) {
	for k, v := range other {
		p[k] = v
	}
}

// Paths returns the sorted keys.
func (p PathAttributes) Paths() []string {
	result := make([]string, 0, len(p))
	for k := range p {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// ChangeBatch groups paths by the full attribute string they must be set to.
type ChangeBatch map[AttributeSet][]string

func (b ChangeBatch) Add(attrs AttributeSet, path string) {
	b[attrs] = append(b[attrs], path)
}

// Groups returns the target attribute strings in sorted order.
func (b ChangeBatch) Groups() []AttributeSet {
	result := make([]AttributeSet, 0, len(b))
	for k := range b {
		result = append(result, k)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})
	return result
}
