package job

// DriveFile describes a poster copy stored on the shared drive.
type DriveFile struct {
	FileID       string `json:"fileId"`
	FileName     string `json:"fileName"`
	ViewLink     string `json:"viewLink,omitempty"`
	DownloadLink string `json:"downloadLink,omitempty"`
}

// PosterResult is reported back to the poster queue on completion.
type PosterResult struct {
	PosterPath string     `json:"posterPath"`
	FileName   string     `json:"fileName"`
	DriveFile  *DriveFile `json:"driveFile,omitempty"`
	Stdout     string     `json:"-"`
}

// DownloadLinks holds one public link per variant, in variant order.
type DownloadLinks struct {
	Illustrator []string `json:"illustrator"`
	Photoshop   []string `json:"photoshop"`
}

// MockupResult is reported back to the mockup queue on completion.
type MockupResult struct {
	IllustratorFiles []string      `json:"illustratorFiles"`
	PhotoshopFiles   []string      `json:"photoshopFiles"`
	DownloadLinks    DownloadLinks `json:"downloadLinks"`
}
