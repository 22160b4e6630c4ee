package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps leave-application attachments on disk, addressed by
// their opaque attachment id. The first two id characters shard the files so
// a single directory never grows unbounded.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) getPathFromID(id string) string {
	if len(id) < 2 {
		return filepath.Join(ls.basePath, id)
	}
	return filepath.Join(ls.basePath, id[:2], id)
}

func (ls *LocalStorage) Save(id string, data io.Reader) error {
	filePath := ls.getPathFromID(id)

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (ls *LocalStorage) Get(id string) (io.ReadCloser, error) {
	filePath := ls.getPathFromID(id)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("attachment with id %s not found: %w", id, err)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(id string) error {
	err := os.Remove(ls.getPathFromID(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
