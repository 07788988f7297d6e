package gedcom

import "strings"

// NormalizeID turns a raw cross-reference such as "@I123@" into its storage key "123".
// The surrounding @ delimiters are removed and then one leading run of ASCII letters.
// Nested prefixes are not stripped further. ok is false when nothing is left.
func NormalizeID(raw string) (id string, ok bool) {
	s := strings.Trim(strings.TrimSpace(raw), "@")
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	s = s[i:]
	if s == "" {
		return "", false
	}
	return s, true
}

// NormalizeRef is NormalizeID for nullable references.
func NormalizeRef(raw string) *string {
	id, ok := NormalizeID(raw)
	if !ok {
		return nil
	}
	return &id
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
