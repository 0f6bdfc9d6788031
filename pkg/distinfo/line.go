package distinfo

import (
	"strconv"
	"strings"

	"github.com/paultcochrane/BackPAN-Index/pkg/model"
)

// AuthorsPrefix is the archive area holding uploaded distributions.
const AuthorsPrefix = "authors/"

// Options controls which index lines are kept.
type Options struct {
	// OnlyAuthors drops every path outside AuthorsPrefix.
	OnlyAuthors bool
}

// SkipReason says why ParseLine produced no File.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipShortLine   SkipReason = "fewer than three fields"
	SkipBadDate     SkipReason = "date is not a number"
	SkipNoSize      SkipReason = "size missing or zero"
	SkipOutsideArea SkipReason = "path outside authors/"
)

// ParseLine turns one "<path> <epoch> <size>" index line into a File and, when
// the path is a release artifact, a Release. ok is false when the line is
// skipped entirely. A negative size is passed through unchanged.
func ParseLine(line string, opts Options) (file *model.File, release *model.Release, ok bool) {
	file, release, reason := parseLine(line, opts)
	return file, release, reason == SkipNone
}

// ParseLineReason is ParseLine reporting why a line was skipped.
func ParseLineReason(line string, opts Options) (*model.File, *model.Release, SkipReason) {
	return parseLine(line, opts)
}

func parseLine(line string, opts Options) (*model.File, *model.Release, SkipReason) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, nil, SkipShortLine
	}
	prefix := fields[0]

	size, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || size == 0 {
		return nil, nil, SkipNoSize
	}
	date, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, nil, SkipBadDate
	}
	if opts.OnlyAuthors && !strings.HasPrefix(prefix, AuthorsPrefix) {
		return nil, nil, SkipOutsideArea
	}

	file := &model.File{Prefix: prefix, Date: date, Size: size}
	return file, ReleaseFor(prefix), SkipNone
}

// ReleaseFor derives the Release of an archive path, or nil when the path is
// not a release artifact.
func ReleaseFor(prefix string) *model.Release {
	if !IsReleaseCandidate(prefix) {
		return nil
	}
	info := Parse(prefix)
	if info.Dist == "" {
		return nil
	}
	return &model.Release{
		File:      prefix,
		Dist:      info.Dist,
		Version:   info.Version,
		Maturity:  info.Maturity,
		CPANID:    info.CPANID,
		DistVName: info.DistVName,
	}
}

// IsReleaseCandidate reports whether a path may name a release, that is it is
// not one of the .readme or .meta files uploaded alongside.
func IsReleaseCandidate(prefix string) bool {
	lower := strings.ToLower(prefix)
	return !strings.HasSuffix(lower, ".readme") && !strings.HasSuffix(lower, ".meta")
}
