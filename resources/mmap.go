package resources

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Mapped is a read-only view of a file. Data is only valid until Close.
type Mapped struct {
	Data []byte
	file *os.File
	mmap mmap.MMap
}

// ReadMmap
// Maps the file at path read-only. Empty files cannot be mapped, so they
// produce an empty Mapped without touching mmap.
func ReadMmap(path string) (*Mapped, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if stat.IsDir() {
		file.Close()
		return nil, errors.Errorf("%s is a directory", path)
	}
	if stat.Size() == 0 {
		return &Mapped{Data: []byte{}, file: file}, nil
	}
	fileMmap, mmapErr := mmap.Map(file, mmap.RDONLY, 0)
	if mmapErr != nil {
		file.Close()
		return nil, errors.Wrapf(mmapErr, "error trying to mmap %s", path)
	}
	return &Mapped{Data: fileMmap, file: file, mmap: fileMmap}, nil
}

// Close unmaps the data and closes the underlying file.
func (m *Mapped) Close() error {
	var unmapErr error
	if m.mmap != nil {
		unmapErr = m.mmap.Unmap()
		m.mmap = nil
	}
	m.Data = nil
	if m.file != nil {
		closeErr := m.file.Close()
		m.file = nil
		if unmapErr == nil {
			unmapErr = closeErr
		}
	}
	return unmapErr
}
