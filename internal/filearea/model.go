package filearea

import "time"

// Area is a named partition of file listings.
type Area struct {
	ID          int
	Name        string
	Description string
	FileCount   int // computed field
}

// Listing is the metadata for one file. No file bytes are stored.
type Listing struct {
	ID            int
	AreaID        int
	Filename      string
	Description   string
	UploaderID    int
	UploaderName  string // joined
	UploadDate    time.Time
	DownloadCount int
}

// GeneralArea is the area LISTFILES uses when none is given.
const GeneralArea = "General Files"
