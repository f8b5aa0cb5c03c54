package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const (
	// DefaultMaxKeys 内存中最多跟踪的 key 数量
	DefaultMaxKeys = 10000
	// DefaultCleanupInterval 过期桶清理的最小间隔
	DefaultCleanupInterval = time.Minute
)

type memoryEntry struct {
	key    string
	bucket Bucket
	window time.Duration
}

// MemoryStore 进程内桶存储。
// 按写入顺序维护链表，超过 maxKeys 时从最早写入的一端淘汰；
// 每隔 cleanupInterval 在请求路径上顺带清理已过期的桶。
// 多实例部署时各实例独立计数，整体限额会被放大。
type MemoryStore struct {
	mu              sync.Mutex
	entries         map[string]*list.Element
	order           *list.List
	maxKeys         int
	cleanupInterval time.Duration
	lastCleanup     time.Time
}

// NewMemoryStore 创建内存存储，参数非正时使用默认值
func NewMemoryStore(maxKeys int, cleanupInterval time.Duration) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &MemoryStore{
		entries:         make(map[string]*list.Element),
		order:           list.New(),
		maxKeys:         maxKeys,
		cleanupInterval: cleanupInterval,
	}
}

// Consume 实现 Store
func (s *MemoryStore) Consume(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired(now)

	var (
		current Bucket
		exists  bool
	)
	elem, ok := s.entries[key]
	if ok {
		current = elem.Value.(*memoryEntry).bucket
		exists = true
	}

	next, res, write := Decide(current, exists, limit, window, now)
	if !write {
		return res, nil
	}

	if ok {
		entry := elem.Value.(*memoryEntry)
		entry.bucket = next
		entry.window = window
		s.order.MoveToBack(elem)
	} else {
		s.entries[key] = s.order.PushBack(&memoryEntry{key: key, bucket: next, window: window})
	}
	s.evictOldest()
	return res, nil
}

// Len 当前跟踪的 key 数量
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Reset 清空全部桶
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*list.Element)
	s.order.Init()
	s.lastCleanup = time.Time{}
}

func (s *MemoryStore) evictExpired(now time.Time) {
	if !s.lastCleanup.IsZero() && now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	for elem := s.order.Front(); elem != nil; {
		next := elem.Next()
		entry := elem.Value.(*memoryEntry)
		if now.Sub(entry.bucket.WindowStart) >= entry.window {
			s.order.Remove(elem)
			delete(s.entries, entry.key)
		}
		elem = next
	}
}

func (s *MemoryStore) evictOldest() {
	for len(s.entries) > s.maxKeys {
		front := s.order.Front()
		if front == nil {
			return
		}
		s.order.Remove(front)
		delete(s.entries, front.Value.(*memoryEntry).key)
	}
}
