// Package elasticsearch keeps a searchable copy of tasks in an Elasticsearch index.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	esv7 "github.com/elastic/go-elasticsearch/v7"
	esv7api "github.com/elastic/go-elasticsearch/v7/esapi"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/todo-app/internal"
)

const otelName = "github.com/sanLimbu/todo-app/internal/elasticsearch"

// Task represents the repository used for interacting with indexed Task records.
type Task struct {
	client *esv7.Client
	index  string
}

type indexedTask struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date,omitempty"`
	Completed   bool     `json:"completed"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	UserID      int64    `json:"user_id"`
}

// NewTask instantiates the Task repository.
func NewTask(client *esv7.Client) *Task {
	return &Task{
		client: client,
		index:  "tasks",
	}
}

// Index creates or updates a task in the index.
func (t *Task) Index(ctx context.Context, task internal.Task) error {
	defer newOTELSpan(ctx, "Task.Index").End()

	body := indexedTask{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Completed:   task.Completed,
		Priority:    string(task.Priority),
		Tags:        task.Tags,
		UserID:      task.UserID,
	}

	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewEncoder.Encode")
	}

	req := esv7api.IndexRequest{
		Index:      t.index,
		Body:       &buf,
		DocumentID: task.ID,
		Refresh:    "true",
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "IndexRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return internal.NewErrorf(internal.ErrorCodeUnknown, "IndexRequest.Do %d", resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Delete removes a task from the index, deleting a missing document succeeds.
func (t *Task) Delete(ctx context.Context, id string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	req := esv7api.DeleteRequest{
		Index:      t.index,
		DocumentID: id,
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "DeleteRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() && resp.StatusCode != http.StatusNotFound {
		return internal.NewErrorf(internal.ErrorCodeUnknown, "DeleteRequest.Do %d", resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemElasticsearch)

	return span
}
