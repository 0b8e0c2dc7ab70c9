package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asaramis/scenario-planning-app/internal/model"
)

// ErrScenarioNotFound 场景不存在
var ErrScenarioNotFound = errors.New("scenario not found")

// MemoryStore 内存场景存储（进程退出即丢弃）
// 读写均做深拷贝，调用方拿到的场景与存储互不影响
type MemoryStore struct {
	scenarios map[string]*model.Scenario
	mu        sync.RWMutex
	now       func() time.Time
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scenarios: make(map[string]*model.Scenario),
		now:       time.Now,
	}
}

// Create 保存新场景并分配 ID
func (s *MemoryStore) Create(sc *model.Scenario) *model.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := sc.Clone()
	stored.ID = uuid.New().String()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.scenarios[stored.ID] = stored

	return stored.Clone()
}

// Get 获取单个场景
func (s *MemoryStore) Get(id string) (*model.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.scenarios[id]
	if !ok {
		return nil, ErrScenarioNotFound
	}
	return sc.Clone(), nil
}

// Put 整体替换已有场景
func (s *MemoryStore) Put(sc *model.Scenario) (*model.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.scenarios[sc.ID]
	if !ok {
		return nil, ErrScenarioNotFound
	}

	stored := sc.Clone()
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = s.now()
	s.scenarios[stored.ID] = stored

	return stored.Clone(), nil
}

// Delete 删除场景
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scenarios[id]; !ok {
		return ErrScenarioNotFound
	}
	delete(s.scenarios, id)
	return nil
}

// List 按创建时间列出所有场景
func (s *MemoryStore) List() []*model.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Scenario, 0, len(s.scenarios))
	for _, sc := range s.scenarios {
		result = append(result, sc.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Count 场景数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenarios)
}
