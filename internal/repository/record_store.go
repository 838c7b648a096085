package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// RecordStore 单实体记录存取接口，以标识符作为文件名主干
type RecordStore interface {
	Get(id string, out interface{}) (bool, error)
	Put(id string, v interface{}) error
	Exists(id string) (bool, error)
	ListStems() ([]string, error)
	Dir() string
	Ext() string
}

// FileRecordStore 平铺目录实现：每条记录一个 <id><ext> 文件
type FileRecordStore struct {
	dir   string
	codec RecordCodec
}

// NewFileRecordStore 创建记录存储，目录不存在时自动创建
func NewFileRecordStore(dir string, codec RecordCodec) (*FileRecordStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("record dir is empty")
	}
	if codec == nil {
		return nil, errors.New("record codec is nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("mkdir", dir, err)
	}
	return &FileRecordStore{dir: dir, codec: codec}, nil
}

// Dir 记录目录
func (s *FileRecordStore) Dir() string {
	return s.dir
}

// Ext 记录文件扩展名
func (s *FileRecordStore) Ext() string {
	return s.codec.Ext()
}

// Path 记录文件完整路径
func (s *FileRecordStore) Path(id string) string {
	return filepath.Join(s.dir, id+s.codec.Ext())
}

// Get 读取记录，记录不存在时返回 false 且不报错
func (s *FileRecordStore) Get(id string, out interface{}) (bool, error) {
	path := s.Path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, storageErr("read", path, err)
	}
	if err := s.codec.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrRecordCorrupt, path, err)
	}
	return true, nil
}

// Put 覆盖写入记录（后写者生效），先写临时文件再原子替换
func (s *FileRecordStore) Put(id string, v interface{}) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}
	return writeFileAtomic(s.Path(id), data)
}

// Exists 记录文件是否存在
func (s *FileRecordStore) Exists(id string) (bool, error) {
	path := s.Path(id)
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, storageErr("stat", path, err)
}

// ListStems 按目录列举顺序返回所有带记录扩展名的文件主干
func (s *FileRecordStore) ListStems() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, storageErr("readdir", s.dir, err)
	}
	ext := s.codec.Ext()
	stems := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ext) {
			continue
		}
		stems = append(stems, strings.TrimSuffix(name, ext))
	}
	return stems, nil
}

// writeFileAtomic 写临时文件后 rename，避免中断时留下半写文件
func writeFileAtomic(path string, data []byte) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return storageErr("write", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return storageErr("rename", path, err)
	}
	return nil
}
