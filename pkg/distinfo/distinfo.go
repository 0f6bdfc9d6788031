// Package distinfo extracts distribution metadata from BackPAN archive paths
// and turns raw index lines into File and Release records.
//
// The naming rules follow the long-standing CPAN::DistnameInfo conventions.
// Upstream filenames are only loosely structured, so everything here is a
// heuristic: a path that does not fit yields an empty Dist rather than an error.
package distinfo

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/paultcochrane/BackPAN-Index/pkg/model"
)

// Info is the metadata encoded in one archive path.
type Info struct {
	Pathname  string
	Filename  string // path below the author directory
	CPANID    string
	DistVName string // name-version token exactly as it appears in the filename
	Extension string
	Dist      string
	Version   string
	Maturity  model.Maturity
}

var (
	slashRun     = regexp.MustCompile(`//+`)
	archiveName  = regexp.MustCompile(`(?i)([^/]+)\.(tar\.(?:g?z|bz2)|zip|tgz)$`)
	vPrefixName  = regexp.MustCompile(`(?s)^(-[Vv].*)-(\d.*)$`)
	underName    = regexp.MustCompile(`(?s)(.+_.*)-(\d.*)$`)
	trailingVer  = regexp.MustCompile(`-(\d+\w)$`)
	trailingWord = regexp.MustCompile(`-(\w+)$`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	dottedNum    = regexp.MustCompile(`\d\.\d`)
	perlRelease  = regexp.MustCompile(`^perl-?\d+\.(\d+)(?:\D(\d+))?(-(?:TRIAL|RC)\d+)?$`)
	trialVersion = regexp.MustCompile(`\d\D\d+_\d`)
)

// Parse splits an archive path into its components. Paths without a
// recognised archive extension come back with an empty DistVName and Dist.
func Parse(pathname string) Info {
	p := slashRun.ReplaceAllString(pathname, "/")
	info := Info{Pathname: p, Filename: p}

	if rest, cpanid, ok := splitAuthorDir(p); ok {
		info.Filename = rest
		info.CPANID = cpanid
	}

	m := archiveName.FindStringSubmatch(p)
	if m == nil {
		return info
	}
	info.DistVName = m[1]
	info.Extension = m[2]
	info.Dist, info.Version, info.Maturity = DistnameInfo(info.DistVName)
	return info
}

// DistnameInfo splits a distvname such as "Acme-Colour-0.16" into dist,
// version and maturity.
func DistnameInfo(distvname string) (dist, version string, maturity model.Maturity) {
	if distvname == "" {
		return "", "", model.MaturityUnknown
	}

	n := nameLength(distvname)
	if n == 0 {
		return distvname, "", model.MaturityUnknown
	}
	dist, version = distvname[:n], distvname[n:]

	if strings.HasSuffix(dist, "-undef") && version == "" {
		dist = strings.TrimSuffix(dist, "-undef")
	}

	version = strings.TrimSuffix(version, "-withoutworldwriteables")

	if m := vPrefixName.FindStringSubmatch(version); m != nil {
		// Unicode-Collate-Standard-V3_1_1-0.1
		dist += m[1]
		version = m[2]
	}

	if m := underName.FindStringSubmatch(version); m != nil {
		// Task-Deprecations5_14-1.00, but not libao-perl_0.03-1
		dist += m[1]
		version = m[2]
	}

	dist = StripPackageSuffix(dist)

	if version == "" {
		if m := trailingVer.FindStringSubmatchIndex(dist); m != nil {
			version = dist[m[2]:m[3]]
			dist = dist[:m[0]]
		}
	}

	if digitsOnly.MatchString(version) {
		if m := trailingWord.FindStringSubmatchIndex(dist); m != nil {
			version = dist[m[2]:m[3]] + version
			dist = dist[:m[0]]
		}
	}

	if dottedNum.MatchString(version) {
		version = strings.TrimLeft(version, "-_.")
	} else {
		version = strings.TrimLeft(version, "-_")
	}

	return dist, version, MaturityOf(distvname, version)
}

// MaturityOf classifies a release from its distvname and extracted version.
func MaturityOf(distvname, version string) model.Maturity {
	if version == "" {
		return model.MaturityUnknown
	}
	if m := perlRelease.FindStringSubmatch(distvname); m != nil {
		minor := numeric(m[1])
		if (minor > 6 && oddDigits(m[1])) || (m[2] != "" && numeric(m[2]) >= 50) || m[3] != "" {
			return model.MaturityDeveloper
		}
		return model.MaturityReleased
	}
	if trialVersion.MatchString(version) || strings.Contains(version, "-TRIAL") {
		return model.MaturityDeveloper
	}
	return model.MaturityReleased
}

// StripPackageSuffix removes the ".pm" that uploads such as CGI.pm-2.75 carry
// in their distribution name.
func StripPackageSuffix(dist string) string {
	return strings.TrimSuffix(dist, ".pm")
}

func numeric(digits string) float64 {
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return f
}

func oddDigits(digits string) bool {
	return digits != "" && (digits[len(digits)-1]-'0')%2 == 1
}
