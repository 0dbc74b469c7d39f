package model

// ReportTask describes the scan task that produced the duplicate report.
type ReportTask struct {
	Name           string `json:"name"`
	FilesTotal     int64  `json:"files_total"`
	FilesTotalSize int64  `json:"files_total_size"`
}

// FileRecord is a single file inside a duplicate group.
// Records are read-only snapshots of the upstream scanner's output.
type FileRecord struct {
	ID   int64  `json:"fileid"`
	Path string `json:"filepath"`
	Size int64  `json:"filesize"`
}

// DuplicateGroup is a set of files identified upstream as the same content.
// The order of Files carries no meaning; the selector re-sorts them.
type DuplicateGroup struct {
	ID    int64        `json:"id"`
	Files []FileRecord `json:"files"`
}

// DuplicateReport is the input document consumed from the upstream scanner.
type DuplicateReport struct {
	Task    *ReportTask      `json:"Task"`
	Results []DuplicateGroup `json:"Results"`
}
