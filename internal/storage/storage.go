package storage

import "io"

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

type Storage interface {
	SaveFile(r io.Reader, info FileInfo) (string, error)
	ReadFile(name string) ([]byte, error)
	OpenFile(name string) (io.ReadSeekCloser, error)
	DeleteFile(name string) error
}
