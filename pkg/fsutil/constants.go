package fsutil

// File and directory permission constants.
const (
	FileModeDefault = 0o644 // -rw-r--r--: Default for regular files
	FileModeSecure  = 0o640 // -rw-r-----: Downloaded and extracted index files

	DirModeDefault = 0o755 // drwxr-xr-x: Default for directories
	DirModeSecure  = 0o750 // drwxr-x---: Cache directory
)

// AppName is the name of the application used in paths.
const AppName = "backpan"
