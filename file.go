package discordauth

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
)

// FileType is the MIME type of an uploaded image.
type FileType string

const (
	FileTypePNG  FileType = "image/png"
	FileTypeJPEG FileType = "image/jpeg"
	FileTypeGIF  FileType = "image/gif"
)

// File is an image to upload, e.g. a new avatar.
type File struct {
	Reader io.Reader
	Type   FileType
}

// NewFile wraps r. An empty fileType defaults to PNG.
func NewFile(r io.Reader, fileType FileType) *File {
	if fileType == "" {
		fileType = FileTypePNG
	}
	return &File{Reader: r, Type: fileType}
}

// OpenFile reads the image at path into memory.
func OpenFile(path string, fileType FileType) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewFile(bytes.NewReader(data), fileType), nil
}

// DataURI reads the file and encodes it as a base64 data URI, the format
// Discord expects for image uploads.
func (f *File) DataURI() (string, error) {
	data, err := io.ReadAll(f.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	fileType := f.Type
	if fileType == "" {
		fileType = FileTypePNG
	}
	return "data:" + string(fileType) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
