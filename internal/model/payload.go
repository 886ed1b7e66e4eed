package model

import "time"

// PayloadDescriptor records an uploaded payload. Created once at upload
// time and never mutated. Deleting a definition does not cascade to its
// descriptors or stored bytes; orphans are accepted.
type PayloadDescriptor struct {
	PayloadRef     string    `json:"payloadRef"`
	OriginalName   string    `json:"originalName"`
	MimeType       string    `json:"mimeType"`
	ByteSize       int64     `json:"byteSize"`
	StorageLocator string    `json:"storageLocator"`
	UploadedAt     time.Time `json:"uploadedAt"`
}
