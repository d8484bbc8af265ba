package translator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ReplyCache 保存模型回复，同一模型与提示词不再重复请求
type ReplyCache interface {
	Lookup(key string) (*Reply, bool)
	Store(key string, reply *Reply) error
	Purge() error
}

// TextSlide 标记单段文本翻译的回复，不属于任何一页
const TextSlide = -1

// Reply 是一条缓存的模型回复（已过滤推理块）
type Reply struct {
	Model string `json:"model"`
	Slide int    `json:"slide"`
	// Sources 是提示词中的原文，单段文本时只有一项
	Sources  []string  `json:"sources"`
	Content  string    `json:"content"`
	StoredAt time.Time `json:"stored_at"`
}

// CacheKey 由模型与提示词计算缓存键，各部分以 NUL 分隔
func CacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DiskCache 把每条回复存为 <dir>/<key 前两位>/<key>.json
type DiskCache struct {
	dir string
}

// NewDiskCache 创建磁盘缓存，目录在首次写入时创建
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{dir: dir}
}

func (c *DiskCache) path(key string) string {
	shard := key
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return filepath.Join(c.dir, shard, key+".json")
}

// Lookup 读取缓存条目，文件损坏时按未命中处理
func (c *DiskCache) Lookup(key string) (*Reply, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil || reply.Content == "" {
		return nil, false
	}
	return &reply, true
}

// Store 先写临时文件再改名，并发写同一键时读者不会看到半个文件
func (c *DiskCache) Store(key string, reply *Reply) error {
	target := c.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("创建缓存目录失败: %w", err)
	}
	data, err := json.MarshalIndent(reply, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化缓存条目失败: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), key+".*.tmp")
	if err != nil {
		return fmt.Errorf("写入缓存文件失败: %w", err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("写入缓存文件失败: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("写入缓存文件失败: %w", err)
	}
	return nil
}

// Purge 删除全部缓存条目，只移除两位十六进制命名的分片目录
func (c *DiskCache) Purge() error {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("读取缓存目录失败: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() || !isShard(e.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("清除缓存失败: %w", err)
		}
	}
	return nil
}

func isShard(name string) bool {
	if len(name) != 2 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// MemoryCache 在进程内保存回复
type MemoryCache struct {
	mu      sync.Mutex
	replies map[string]Reply
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{replies: make(map[string]Reply)}
}

func (c *MemoryCache) Lookup(key string) (*Reply, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reply, ok := c.replies[key]
	if !ok {
		return nil, false
	}
	return &reply, true
}

func (c *MemoryCache) Store(key string, reply *Reply) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[key] = *reply
	return nil
}

func (c *MemoryCache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.replies)
	return nil
}
