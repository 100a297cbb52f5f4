package store

import (
	"context"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/storeup/shopkit/core"
)

// MemoryStore 是进程内实现的 KeyValueStore，用于单机部署/测试/原型。
// KV 部分委托给 go-cache（TTL 与后台清理由它管理），有序集合部分在内存中自行维护。
// 进程重启后数据丢失；多实例部署应使用 RedisStore。
type MemoryStore struct {
	kv *gocache.Cache

	mu    sync.RWMutex
	zsets map[string]map[string]float64 // zset key -> member -> score
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		kv:    gocache.New(gocache.NoExpiration, 10*time.Second),
		zsets: make(map[string]map[string]float64),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.kv.Get(key)
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return v.([]byte), nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	d := gocache.NoExpiration
	if len(ttl) > 0 && ttl[0] > 0 {
		d = time.Duration(ttl[0]) * time.Second
	}
	m.kv.Set(key, value, d)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.kv.Delete(key)
	return nil
}

func (m *MemoryStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.kv.Get(k); ok {
			result[k] = v.([]byte)
		}
	}
	return result, nil
}

func (m *MemoryStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	d := gocache.NoExpiration
	if len(ttl) > 0 && ttl[0] > 0 {
		d = time.Duration(ttl[0]) * time.Second
	}
	for k, v := range kvs {
		m.kv.Set(k, v, d)
	}
	return nil
}

func (m *MemoryStore) Close() error {
	m.kv.Flush()
	return nil
}

// KeyValueStore 扩展方法（MemoryStore 也实现 core.KeyValueStore 接口）

var _ core.KeyValueStore = (*MemoryStore)(nil)

func (m *MemoryStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]float64)
	}
	m.zsets[key][member] = score
	return nil
}

func (m *MemoryStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok || len(zset) == 0 {
		return nil, nil
	}

	type pair struct {
		member string
		score  float64
	}
	pairs := make([]pair, 0, len(zset))
	for member, score := range zset {
		pairs = append(pairs, pair{member: member, score: score})
	}
	// 按 score 降序，同分按 member 升序保证结果稳定
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].member < pairs[j].member
	})

	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= int64(len(pairs)) {
		stop = int64(len(pairs)) - 1
	}
	if start > stop {
		return nil, nil
	}

	result := make([]string, 0, stop-start+1)
	for i := start; i <= stop && i < int64(len(pairs)); i++ {
		result = append(result, pairs[i].member)
	}
	return result, nil
}

func (m *MemoryStore) ZScore(ctx context.Context, key string, member string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok {
		return 0, core.ErrStoreNotFound
	}
	score, ok := zset[member]
	if !ok {
		return 0, core.ErrStoreNotFound
	}
	return score, nil
}
