package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"

	"github.com/claimkit/claimkit/service/messaging"
)

// MessageState tracks where a message sits in the queue directory layout.
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
	MessageStateCompleted  MessageState = "completed"
	MessageStateFailed     MessageState = "failed"
)

// Config holds the filesystem queue settings.
type Config struct {
	BasePath   string        // base directory for queue files
	MaxRetries int           // maximum retry attempts before dead-letter
	RetryDelay time.Duration // delay between retries
}

// DefaultConfig returns a default filesystem queue configuration.
func DefaultConfig() Config {
	return Config{
		BasePath:   "/tmp/claimkit/queue",
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Message implements messaging.Message for the filesystem queue. Messages
// move between directories as their state changes, which makes the queue
// inspectable and survivable across process restarts.
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack moves the message to the completed directory.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = time.Now()
	return m.queue.move(context.Background(), m, m.queue.completedDir)
}

// Nack moves the message to the failed directory for a later retry, or to
// the dead-letter directory once retries are exhausted.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = time.Now()
	dest := m.queue.failedDir
	if m.Retries > m.queue.config.MaxRetries {
		dest = m.queue.dlqDir
	}
	return m.queue.move(context.Background(), m, dest)
}

// Queue implements a filesystem-based messaging.Queue on the abstract file
// system, so the base path may live on local disk, memory or cloud storage.
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	completedDir  string
	failedDir     string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a filesystem-backed queue rooted at config.BasePath.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		completedDir:  path.Join(config.BasePath, "completed"),
		failedDir:     path.Join(config.BasePath, "failed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.completedDir, q.failedDir, q.dlqDir} {
		if exists, _ := fs.Exists(ctx, dir); !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return q, nil
}

// Publish writes a new message into the pending directory.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := time.Now()
	message := &Message[T]{
		ID:        uuid.New().String(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: now,
		UpdatedAt: now,
		queue:     q,
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	location := path.Join(q.pendingDir, q.filename(message.ID, now))
	return q.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data))
}

// Consume claims the oldest pending (or retry-eligible failed) message and
// moves it into the processing directory. It returns nil when the queue is
// empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, dir := range []string{q.failedDir, q.pendingDir} {
		object, err := q.oldest(ctx, dir)
		if err != nil {
			return nil, err
		}
		if object == nil {
			continue
		}
		message, err := q.claim(ctx, object)
		if err != nil {
			return nil, err
		}
		if message != nil {
			return message, nil
		}
	}
	return nil, nil
}

// oldest returns the first JSON message object in dir, nil when none exist.
func (q *Queue[T]) oldest(ctx context.Context, dir string) (storage.Object, error) {
	objects, err := q.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			return object, nil
		}
	}
	return nil, nil
}

// claim moves the object into the processing directory and returns the
// decoded message. Undecodable payloads are parked in the dead-letter
// directory and claim returns nil.
func (q *Queue[T]) claim(ctx context.Context, object storage.Object) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, object.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", object.URL(), err)
	}
	var message Message[T]
	if err = json.Unmarshal(data, &message); err != nil {
		dest := path.Join(q.dlqDir, fmt.Sprintf("invalid-%s", object.Name()))
		_ = q.fs.Move(ctx, object.URL(), dest)
		return nil, nil
	}
	if message.Retries > q.config.MaxRetries {
		_ = q.fs.Move(ctx, object.URL(), path.Join(q.dlqDir, object.Name()))
		return nil, nil
	}

	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q

	updated, err := json.Marshal(&message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	processingPath := path.Join(q.processingDir, object.Name())
	if err = q.fs.Upload(ctx, processingPath, file.DefaultFileOsMode, bytes.NewReader(updated)); err != nil {
		return nil, fmt.Errorf("failed to move message to processing: %w", err)
	}
	if err = q.fs.Delete(ctx, object.URL()); err != nil {
		return nil, fmt.Errorf("failed to remove claimed message: %w", err)
	}
	return &message, nil
}

// move relocates a processed message from the processing directory to dest.
func (q *Queue[T]) move(ctx context.Context, m *Message[T], dest string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	name := q.filename(m.ID, m.CreatedAt)
	if err = q.fs.Upload(ctx, path.Join(dest, name), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store message in %s: %w", dest, err)
	}
	source := path.Join(q.processingDir, name)
	if exists, _ := q.fs.Exists(ctx, source); exists {
		return q.fs.Delete(ctx, source)
	}
	return nil
}

// filename orders messages by creation time while keeping names unique.
func (q *Queue[T]) filename(id string, createdAt time.Time) string {
	return fmt.Sprintf("%d-%s.json", createdAt.UnixNano(), id)
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
