// Package model provides the records stored in the BackPAN index: files,
// releases and the distributions derived from them.
package model

import (
	"path"
	"strings"
	"time"
)

// Maturity classifies a release as a stable or a developer/trial upload.
type Maturity string

const (
	// MaturityReleased marks a stable release.
	MaturityReleased Maturity = "released"
	// MaturityDeveloper marks a trial release (underscore versions, -TRIAL, odd perl minors).
	MaturityDeveloper Maturity = "developer"
	// MaturityUnknown is used when no version could be extracted from the filename.
	MaturityUnknown Maturity = "unknown"
)

// File is one path listed in the BackPAN index.
type File struct {
	Prefix string `db:"prefix" json:"prefix"`
	Date   int64  `db:"date" json:"date"`
	Size   int64  `db:"size" json:"size"`
}

// Path returns the path of the file relative to the archive root.
func (f File) Path() string {
	return f.Prefix
}

// Filename returns the last path element.
func (f File) Filename() string {
	return path.Base(f.Prefix)
}

// Time returns the upload time.
func (f File) Time() time.Time {
	return time.Unix(f.Date, 0)
}

// URL builds the download URL of the file on the given mirror.
func (f File) URL(mirror string) string {
	return mirrorURL(mirror, f.Prefix)
}

// Release is a versioned release artifact of a distribution. Date and Size are
// only filled when the release is read joined with its file.
type Release struct {
	ID        int64    `db:"id" json:"id"`
	File      string   `db:"file" json:"file"`
	Dist      string   `db:"dist" json:"dist"`
	Version   string   `db:"version" json:"version"`
	Maturity  Maturity `db:"maturity" json:"maturity"`
	CPANID    string   `db:"cpanid" json:"cpanid"`
	DistVName string   `db:"distvname" json:"distvname"`
	Date      int64    `db:"date" json:"date,omitempty"`
	Size      int64    `db:"size" json:"size,omitempty"`
}

// Path returns the path of the owning file.
func (r Release) Path() string {
	return r.File
}

// Filename returns the last path element of the owning file.
func (r Release) Filename() string {
	return path.Base(r.File)
}

// Time returns the upload time of the owning file.
func (r Release) Time() time.Time {
	return time.Unix(r.Date, 0)
}

// URL builds the download URL of the release tarball on the given mirror.
func (r Release) URL(mirror string) string {
	return mirrorURL(mirror, r.File)
}

// IsDeveloper reports whether the release is a trial release.
func (r Release) IsDeveloper() bool {
	return r.Maturity == MaturityDeveloper
}

// Dist is a distribution: every release sharing a dist name.
type Dist struct {
	Name        string `db:"name" json:"name"`
	NumReleases int64  `db:"num_releases" json:"num_releases"`
	FirstDate   int64  `db:"first_date" json:"first_date"`
	LatestDate  int64  `db:"latest_date" json:"latest_date"`
}

// FirstTime returns the upload time of the oldest release.
func (d Dist) FirstTime() time.Time {
	return time.Unix(d.FirstDate, 0)
}

// LatestTime returns the upload time of the newest release.
func (d Dist) LatestTime() time.Time {
	return time.Unix(d.LatestDate, 0)
}

func mirrorURL(mirror, prefix string) string {
	return strings.TrimSuffix(mirror, "/") + "/" + strings.TrimPrefix(prefix, "/")
}
