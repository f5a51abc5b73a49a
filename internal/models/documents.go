package models

import (
	"io"
	"time"
)

const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
)

type Document struct {
	ID               string    `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Description      *string   `json:"description,omitempty" db:"description"`
	FileName         string    `json:"file_name" db:"file_name"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	ContentType      string    `json:"content_type" db:"content_type"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	Content          *string   `json:"content,omitempty" db:"content"`
	StoragePath      string    `json:"storage_path" db:"storage_path"`
	Status           string    `json:"status" db:"status"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// UploadFile is satisfied by multipart.File. Text is read sequentially;
// PDF and DOCX parsers read in place through ReadAt.
type UploadFile interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

type UploadRequest struct {
	File        UploadFile
	Size        int64
	Filename    string
	ContentType string
	Title       string
	Description string
}

type UploadResponse struct {
	Success  bool      `json:"success"`
	Document *Document `json:"document"`
	Message  string    `json:"message"`
}
