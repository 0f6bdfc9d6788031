package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
)

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
}

func formatDate(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(DateFormat)
}

func formatSize(size int64) string {
	if size < 0 {
		return fmt.Sprintf("%d B", size)
	}
	return humanize.IBytes(uint64(size))
}

func writeReleases(w io.Writer, releases []model.Release) {
	_, _ = fmt.Fprintln(w, "DIST\tVERSION\tMATURITY\tAUTHOR\tDATE\tSIZE")
	for _, r := range releases {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Dist, r.Version, r.Maturity, r.CPANID, formatDate(r.Date), formatSize(r.Size))
	}
}
