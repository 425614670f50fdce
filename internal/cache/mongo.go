package cache

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

const mongoCollection = "task_cache"

type mongoEntry struct {
	Key       string      `bson:"_id"`
	Tasks     []mongoTask `bson:"tasks"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

// mongoTask mirrors model.Task with bson field names.
type mongoTask struct {
	ID          int64   `bson:"id"`
	Task        string  `bson:"task"`
	Username    string  `bson:"username"`
	Date        string  `bson:"date"`
	TaskType    string  `bson:"task_type"`
	Status      int     `bson:"status"`
	Priority    *string `bson:"priority,omitempty"`
	Description *string `bson:"description,omitempty"`
}

// MongoStore хранит снимок одним документом в коллекции task_cache
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	key    string
}

func OpenMongoStore(ctx context.Context, uri, database, key string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
		key:    key,
	}, nil
}

func (s *MongoStore) Init(ctx context.Context) error { return nil }

func (s *MongoStore) Load(ctx context.Context) ([]model.Task, error) {
	var entry mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(entry.Tasks))
	for _, mt := range entry.Tasks {
		t := model.Task{
			ID:          mt.ID,
			Task:        mt.Task,
			Username:    mt.Username,
			Date:        mt.Date,
			TaskType:    model.TaskType(mt.TaskType),
			Status:      mt.Status,
			Description: mt.Description,
		}
		if mt.Priority != nil {
			t.Priority = model.Ptr(model.Priority(*mt.Priority))
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *MongoStore) Save(ctx context.Context, tasks []model.Task) error {
	entry := mongoEntry{Key: s.key, Tasks: make([]mongoTask, 0, len(tasks)), UpdatedAt: time.Now()}
	for _, t := range tasks {
		mt := mongoTask{
			ID:          t.ID,
			Task:        t.Task,
			Username:    t.Username,
			Date:        t.Date,
			TaskType:    string(t.TaskType),
			Status:      t.Status,
			Description: t.Description,
		}
		if t.Priority != nil {
			mt.Priority = model.Ptr(string(*t.Priority))
		}
		entry.Tasks = append(entry.Tasks, mt)
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.key}, entry, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Clear(ctx context.Context) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key})
	return err
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
