package model

// UploadTaskID identifies one in-flight upload on this client
type UploadTaskID string

// UploadStatus is the lifecycle state of an upload task
type UploadStatus string

const (
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusError     UploadStatus = "error"
)

// UploadTask is ephemeral, client-local bookkeeping for one file transfer.
// It is never persisted; it exists for the duration of the upload plus a
// short post-completion display window.
type UploadTask struct {
	ID       UploadTaskID
	FileName string
	Progress float64 // 0..100
	Status   UploadStatus
	Error    string
}
