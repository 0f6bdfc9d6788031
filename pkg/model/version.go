package model

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
)

// ParseVersion parses a Perl-style version string. Trial underscores are read
// as dots so that 1.00_01 sorts between 1.00 and 1.01.
func ParseVersion(v string) (*version.Version, error) {
	return version.NewVersion(strings.ReplaceAll(v, "_", "."))
}

// SortByVersion orders releases by ascending version. Versions that cannot be
// parsed sort after all parseable ones, lexically among themselves.
func SortByVersion(releases []Release) {
	parsed := make(map[string]*version.Version, len(releases))
	for _, r := range releases {
		if _, ok := parsed[r.Version]; ok {
			continue
		}
		v, err := ParseVersion(r.Version)
		if err != nil {
			v = nil
		}
		parsed[r.Version] = v
	}

	sort.SliceStable(releases, func(i, j int) bool {
		vi, vj := parsed[releases[i].Version], parsed[releases[j].Version]
		switch {
		case vi != nil && vj != nil:
			if vi.Equal(vj) {
				return releases[i].Version < releases[j].Version
			}
			return vi.LessThan(vj)
		case vi != nil:
			return true
		case vj != nil:
			return false
		default:
			return releases[i].Version < releases[j].Version
		}
	})
}
