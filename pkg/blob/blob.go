package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store 图片存储的窄接口。核心只在发帖/删帖流程碰它，
// 上传失败不产生半成品帖子，删除失败只记日志。
type Store interface {
	Upload(ctx context.Context, ownerID int64, data []byte) (key string, url string, err error)
	Delete(ctx context.Context, key string) error
}

// LocalStore 本地文件系统实现，单机部署和测试用。
// 生产部署换成对象存储网关，接口不变。
type LocalStore struct {
	baseDir   string
	publicURL string
}

func NewLocalStore(baseDir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir, publicURL: publicURL}, nil
}

func (s *LocalStore) Upload(ctx context.Context, ownerID int64, data []byte) (string, string, error) {
	key := fmt.Sprintf("images/%d/%s.jpg", ownerID, uuid.New().String())
	path := filepath.Join(s.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", "", fmt.Errorf("create owner dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write blob: %w", err)
	}
	return key, s.publicURL + "/" + key, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.baseDir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
