package model

// StatusState is the tri-state liveness of a remote path.
type StatusState int

const (
	// StatusUnknown means the status query failed transiently. Unknown
	// entries are valid for the current run only and are never persisted.
	StatusUnknown StatusState = iota
	// StatusLive means the remote object exists.
	StatusLive
	// StatusAbsent means the remote object is gone, or resides in the
	// trash namespace and is treated as gone.
	StatusAbsent
)

// RemoteStatus is a snapshot of a remote object's existence and metadata.
type RemoteStatus struct {
	State   StatusState `json:"state"`
	Size    int64       `json:"size,omitempty"`
	ModTime int64       `json:"mtime,omitempty"`
	Etag    string      `json:"etag,omitempty"`
}

// IsLive reports whether the object is confirmed to exist.
func (s RemoteStatus) IsLive() bool {
	return s.State == StatusLive
}
