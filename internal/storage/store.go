// Package storage 保存上传的演示文稿与翻译结果。
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound 文件不存在或 ID 无效
var ErrNotFound = errors.New("file not found")

// FileStore 把上传保存为 {upload_dir}/{id}.pptx，输出为 {output_dir}/{id}_translated.pptx
type FileStore struct {
	uploadDir string
	outputDir string
}

// NewFileStore 创建存储并确保目录存在
func NewFileStore(uploadDir, outputDir string) (*FileStore, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建目录失败 %s: %w", dir, err)
		}
	}
	return &FileStore{uploadDir: uploadDir, outputDir: outputDir}, nil
}

// NewID 生成新的文件 ID
func (s *FileStore) NewID() string {
	return uuid.NewString()
}

// UploadPath 返回上传文件路径
func (s *FileStore) UploadPath(id string) string {
	return filepath.Join(s.uploadDir, id+".pptx")
}

// OutputPath 返回翻译结果路径
func (s *FileStore) OutputPath(id string) string {
	return filepath.Join(s.outputDir, id+"_translated.pptx")
}

// SaveUpload 写入上传内容，返回写入的字节数
func (s *FileStore) SaveUpload(id string, r io.Reader) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, fmt.Errorf("invalid file id %q: %w", id, err)
	}

	f, err := os.Create(s.UploadPath(id))
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return 0, err
	}
	return n, nil
}

// RemoveUpload 删除上传文件
func (s *FileStore) RemoveUpload(id string) error {
	err := os.Remove(s.UploadPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Output 返回已存在的翻译结果路径。id 必须是 UUID，防止路径穿越。
func (s *FileStore) Output(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNotFound
	}
	path := s.OutputPath(id)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}
