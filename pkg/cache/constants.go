package cache

import "time"

// Names of the files kept in the cache directory.
const (
	ArchiveName  = "backpan-index.gz"
	IndexName    = "backpan-index.txt"
	DatabaseName = "backpan.sqlite"
)

// DefaultTTL is how long cached state is trusted without asking upstream.
const DefaultTTL = time.Hour
