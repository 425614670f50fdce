package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// MemoryStore keeps the serialized snapshot in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Init(ctx context.Context) error { return nil }

func (m *MemoryStore) Load(ctx context.Context) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrEmpty
	}
	var tasks []model.Task
	if err := json.Unmarshal(m.data, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (m *MemoryStore) Save(ctx context.Context, tasks []model.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
