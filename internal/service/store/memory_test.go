package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/asaramis/scenario-planning-app/internal/model"
)

func newScenario() *model.Scenario {
	baseline := 50.0
	return &model.Scenario{
		Steps: []model.FunnelStep{
			{Name: "visit", Value: 100, PercentOfStart: 100, ConversionVsPrevious: 100},
			{Name: "buy", Value: 50, PercentOfStart: 50, ConversionVsPrevious: 50, BaselineConversion: &baseline},
		},
		RevenueTarget: 2750,
	}
}

// TestNewMemoryStore 测试创建存储
func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	if store.Count() != 0 {
		t.Errorf("New store should be empty, got %d scenarios", store.Count())
	}
}

// TestCreateAndGet 测试创建与读取
func TestCreateAndGet(t *testing.T) {
	store := NewMemoryStore()

	created := store.Create(newScenario())
	if created.ID == "" {
		t.Fatal("Create should assign an ID")
	}
	if created.CreatedAt.IsZero() {
		t.Error("Create should set CreatedAt")
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.RevenueTarget != 2750 || len(got.Steps) != 2 {
		t.Errorf("Get = %+v", got)
	}
}

// TestGetNotFound 测试获取不存在的场景
func TestGetNotFound(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Get("non-existent"); !errors.Is(err, ErrScenarioNotFound) {
		t.Errorf("Get err = %v, want ErrScenarioNotFound", err)
	}
	if _, err := store.Put(&model.Scenario{ID: "non-existent"}); !errors.Is(err, ErrScenarioNotFound) {
		t.Errorf("Put err = %v, want ErrScenarioNotFound", err)
	}
	if err := store.Delete("non-existent"); !errors.Is(err, ErrScenarioNotFound) {
		t.Errorf("Delete err = %v, want ErrScenarioNotFound", err)
	}
}

// TestGetReturnsCopy 读取结果修改后不影响存储
func TestGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	created := store.Create(newScenario())

	got, _ := store.Get(created.ID)
	got.Steps[1].Value = 999
	*got.Steps[1].BaselineConversion = 1
	got.RevenueTarget = 1

	again, _ := store.Get(created.ID)
	if again.Steps[1].Value != 50 || *again.Steps[1].BaselineConversion != 50 || again.RevenueTarget != 2750 {
		t.Errorf("stored scenario mutated through Get: %+v", again)
	}
}

// TestPut 测试整体替换
func TestPut(t *testing.T) {
	store := NewMemoryStore()
	created := store.Create(newScenario())

	created.RevenueTarget = 5500
	created.SelectedStep = "buy"
	updated, err := store.Put(created)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if updated.RevenueTarget != 5500 || updated.SelectedStep != "buy" {
		t.Errorf("Put = %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
}

// TestListAndDelete 测试列表与删除
func TestListAndDelete(t *testing.T) {
	store := NewMemoryStore()
	a := store.Create(newScenario())
	store.Create(newScenario())

	if got := len(store.List()); got != 2 {
		t.Fatalf("List len = %d, want 2", got)
	}
	if err := store.Delete(a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}

	if err := store.Delete(a.ID); err != ErrScenarioNotFound {
		t.Errorf("second Delete err = %v, want ErrScenarioNotFound", err)
	}
}

// TestConcurrentAccess 测试并发访问
func TestConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	created := store.Create(newScenario())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			sc, err := store.Get(created.ID)
			if err != nil {
				return
			}
			sc.RevenueTarget = float64(n)
			_, _ = store.Put(sc)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.List()
		}()
	}
	wg.Wait()

	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
}
