package distinfo

import "strings"

// nameLength returns the length of the distribution-name prefix of a
// distvname, or 0 when no prefix qualifies.
//
// The name is a sequence of groups. Each group is an optional run of '-', '+'
// or '.', then letters, digits and underscores, and ends on either a letter
// not followed by another letter or a digit followed by '-'. A group may not
// end in "-v", "_v" or ".v" (v or V), which marks a version. Underscores are
// only part of a name when they do not sit between two digits. Every group
// extends as far as it can.
func nameLength(s string) int {
	pos := 0
	for {
		end, ok := nextGroup(s, pos)
		if !ok {
			return pos
		}
		pos = end
	}
}

func nextGroup(s string, start int) (int, bool) {
	j := start
	for j < len(s) && isSeparator(s[j]) {
		j++
	}

	reach := j
	for reach < len(s) && bodyChar(s, reach) {
		reach++
	}

	for t := reach - 1; t >= j; t-- {
		if groupEnd(s, t) {
			return t + 1, true
		}
	}
	return 0, false
}

func bodyChar(s string, i int) bool {
	c := s[i]
	if isAlnum(c) {
		return true
	}
	if c != '_' {
		return false
	}
	return (i > 0 && !isDigit(s[i-1])) || (i+1 < len(s) && !isDigit(s[i+1]))
}

func groupEnd(s string, t int) bool {
	c := s[t]
	switch {
	case isLetter(c):
		if t+1 < len(s) && isLetter(s[t+1]) {
			return false
		}
	case isDigit(c):
		if t+1 >= len(s) || s[t+1] != '-' {
			return false
		}
	default:
		return false
	}
	if (c == 'v' || c == 'V') && t > 0 && strings.IndexByte("._-", s[t-1]) >= 0 {
		return false
	}
	return true
}

// splitAuthorDir strips an optional ".../authors/id/" or "id/" prefix and the
// X/XY/XYZ author directories, returning the remaining path and the author id.
func splitAuthorDir(p string) (rest, cpanid string, ok bool) {
	for _, offset := range authorDirOffsets(p) {
		if rest, cpanid, ok := matchAuthorDirs(p[offset:]); ok {
			return rest, cpanid, true
		}
	}
	return p, "", false
}

// authorDirOffsets lists the positions at which the author directories may
// start, in the order they are tried.
func authorDirOffsets(p string) []int {
	const authors = "authors/id/"
	var offsets []int
	for i := 1; i <= len(p); i++ {
		if p[i-1] == '/' && strings.HasPrefix(p[i:], authors) {
			offsets = append(offsets, i+len(authors))
		}
	}
	if strings.HasPrefix(p, authors) {
		offsets = append(offsets, len(authors))
	}
	if strings.HasPrefix(p, "id/") {
		offsets = append(offsets, len("id/"))
	}
	return append(offsets, 0)
}

// matchAuthorDirs matches "X/XY/XY[-A-Z0-9]*/" at the start of s.
func matchAuthorDirs(s string) (rest, cpanid string, ok bool) {
	if len(s) < 8 {
		return "", "", false
	}
	if !isUpper(s[0]) || s[1] != '/' || s[2] != s[0] || !isUpper(s[3]) || s[4] != '/' ||
		s[5] != s[2] || s[6] != s[3] {
		return "", "", false
	}
	i := 7
	for i < len(s) && (isUpper(s[i]) || isDigit(s[i]) || s[i] == '-') {
		i++
	}
	if i >= len(s) || s[i] != '/' {
		return "", "", false
	}
	return s[i+1:], s[5:i], true
}

func isSeparator(c byte) bool { return c == '-' || c == '+' || c == '.' }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isUpper(c byte) bool     { return c >= 'A' && c <= 'Z' }
func isLetter(c byte) bool    { return isUpper(c) || (c >= 'a' && c <= 'z') }
func isAlnum(c byte) bool     { return isLetter(c) || isDigit(c) }
