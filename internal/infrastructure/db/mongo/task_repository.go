package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

const collectionTasks = "tasks"

// TaskRepository implements ports.TaskRepository using MongoDB.
type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type mongoTask struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description,omitempty"`
	Status       string             `bson:"status"`
	AssignedUser string             `bson:"assigned_user,omitempty"`
	CreatedBy    string             `bson:"created_by,omitempty"`
	CreatedDate  time.Time          `bson:"created_date"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (t mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:           t.ID.Hex(),
		Title:        t.Title,
		Description:  t.Description,
		Status:       domain.TaskStatus(t.Status),
		AssignedUser: t.AssignedUser,
		CreatedBy:    t.CreatedBy,
		CreatedDate:  t.CreatedDate.UTC(),
		UpdatedAt:    t.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates the status index used by filtered listing.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTask{
		ID:           primitive.NewObjectID(),
		Title:        task.Title,
		Description:  task.Description,
		Status:       string(task.Status),
		AssignedUser: task.AssignedUser,
		CreatedBy:    task.CreatedBy,
		CreatedDate:  task.CreatedDate.UTC(),
		UpdatedAt:    task.UpdatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a task. Ids that are not valid ObjectIDs cannot exist.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoTask
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns tasks sorted by _id, i.e. insertion order.
func (r *TaskRepository) List(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if status != nil {
		filter["status"] = string(*status)
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}

// UpdateStatus atomically sets the new status only while the document still
// holds the expected one. A miss is disambiguated into not-found or conflict.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, from, to domain.TaskStatus) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": string(from)}
	update := bson.M{"$set": bson.M{"status": string(to), "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoTask
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return nil, domain.ErrWriteConflict
}
