package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageFailure 存储介质错误（权限、磁盘满等），无法本地恢复
	ErrStorageFailure = errors.New("storage failure")
	// ErrRecordCorrupt 记录文件无法解码
	ErrRecordCorrupt = errors.New("record corrupt")
)

// errIndexCorrupt 索引结构损坏，仅在仓库内部使用，总是由重建吸收
var errIndexCorrupt = errors.New("batch index corrupt")

// StorageError 文件系统操作失败
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrStorageFailure) 成立
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

func storageErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Path: path, Err: err}
}
