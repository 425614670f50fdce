package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/testutil"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: 1, Task: "one", Username: "alice", Date: "1-Jan-2025", TaskType: model.TaskTypeOffice},
		{ID: 2, Task: "two", Username: "bob", Date: "2-Feb-2025", TaskType: model.TaskTypeFamily,
			Priority: model.Ptr(model.PriorityHigh), Description: model.Ptr("details")},
		{ID: 3, Task: "three", Username: "carol", Date: "3-Mar-2025", TaskType: model.TaskTypeOther, Status: 1},
	}
}

// backendSuite прогоняет общий контракт для любого Backend
func backendSuite(t *testing.T, b Backend) {
	ctx := context.Background()
	c := New(b)
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.Clear(ctx))

	t.Run("empty cache loads as empty collection", func(t *testing.T) {
		tasks, err := c.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("replace then load round trips", func(t *testing.T) {
		require.NoError(t, c.Replace(ctx, sampleTasks()))

		tasks, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleTasks(), tasks)
	})

	t.Run("remove keeps other ids", func(t *testing.T) {
		require.NoError(t, c.Replace(ctx, sampleTasks()))
		require.NoError(t, c.Update(ctx, Remove(2)))

		tasks, err := c.Load(ctx)
		require.NoError(t, err)
		want := sampleTasks()
		assert.Equal(t, []model.Task{want[0], want[2]}, tasks)
	})

	t.Run("set status patches in place", func(t *testing.T) {
		require.NoError(t, c.Replace(ctx, sampleTasks()))
		require.NoError(t, c.Update(ctx, SetStatus(1, model.StatusCompleted)))

		tasks, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, tasks[0].Status)
		assert.Equal(t, int64(1), tasks[0].ID)
		assert.Len(t, tasks, 3)
	})

	t.Run("clear drops entry", func(t *testing.T) {
		require.NoError(t, c.Replace(ctx, sampleTasks()))
		require.NoError(t, c.Clear(ctx))

		tasks, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestMemoryStore(t *testing.T) {
	backendSuite(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	backendSuite(t, NewFileStore(path))
}

func TestFileStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":`), 0600))

	c := New(NewFileStore(path))
	_, err := c.Load(context.Background())
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	backendSuite(t, NewPostgresStore(pool, "tasks"))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	store, err := OpenMongoStore(context.Background(), uri, "taskboard_test", "tasks")
	require.NoError(t, err)
	defer store.Close()

	backendSuite(t, store)
}

func TestPut(t *testing.T) {
	tasks := sampleTasks()

	replaced := Put(model.Task{ID: 2, Task: "changed"})(tasks)
	assert.Len(t, replaced, 3)
	assert.Equal(t, "changed", replaced[1].Task)

	appended := Put(model.Task{ID: 9, Task: "new"})(replaced)
	assert.Len(t, appended, 4)
	assert.Equal(t, int64(9), appended[3].ID)
}

func TestCache_ConcurrentUpdatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore())
	require.NoError(t, c.Replace(ctx, nil))

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, c.Update(ctx, Put(model.Task{ID: id})))
		}(int64(i))
	}
	wg.Wait()

	tasks, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 50)
}
