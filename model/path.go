package model

import "strings"

const (
	// FilesNamespace is the marker segment separating the account root
	// from the user-visible file tree in logical paths.
	FilesNamespace = "/files/"
	// TrashNamespace is the path prefix of objects already moved to the
	// recycle bin. Trash paths are classified as absent without a remote
	// call.
	TrashNamespace = "files_trashbin"
)

// NormalizeKey strips the files-namespace root (and everything before it)
// from a logical path. The result is used both as the remote-store key and
// as the cache key, so every component must go through this function.
func NormalizeKey(path string) string {
	if idx := strings.Index(path, FilesNamespace); idx >= 0 {
		return path[idx+len(FilesNamespace):]
	}
	return strings.TrimPrefix(path, "/")
}

// InTrash reports whether a logical path lives in the trash namespace.
// Paths may carry a leading account segment ("alice/files_trashbin/...").
func InTrash(path string) bool {
	trimmed := strings.TrimPrefix(path, "/")
	if strings.HasPrefix(trimmed, TrashNamespace) {
		return true
	}
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return strings.HasPrefix(trimmed[i+1:], TrashNamespace)
	}
	return false
}
