package cli

// Default values for CLI output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// DateFormat is used for upload dates in listings.
	DateFormat = "2006-01-02 15:04:05"
)
