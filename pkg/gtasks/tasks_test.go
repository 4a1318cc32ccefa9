package gtasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func stubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New()
	c.opts = []option.ClientOption{
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	}
	return c
}

func TestTaskListsFormatting(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("maxResults"); got != "10" {
			t.Errorf("maxResults = %q, want 10", got)
		}
		fmt.Fprint(w, `{"items": [
			{"title": "Groceries", "id": "list-1"},
			{"title": "Chores", "id": "list-2"}
		]}`)
	})

	got, err := c.TaskLists(context.Background(), nil)
	if err != nil {
		t.Fatalf("TaskLists: %v", err)
	}

	want := "Task lists:\n- Groceries (list-1)\n- Chores (list-2)\n"
	if got != want {
		t.Errorf("TaskLists = %q, want %q", got, want)
	}
}

func TestTasksEmptyList(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	})

	got, err := c.Tasks(context.Background(), nil, "list-1")
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if got != "No tasks found in task list list-1." {
		t.Errorf("Tasks = %q, want empty-list message", got)
	}
}

func TestUpdatePreservesFetchedTask(t *testing.T) {
	var updateBody map[string]any
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"id": "t1", "title": "old", "status": "needsAction", "etag": "e1"}`)
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&updateBody); err != nil {
				t.Fatalf("decoding update: %v", err)
			}
			fmt.Fprint(w, `{"id": "t1", "title": "new"}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	got, err := c.Update(context.Background(), nil, "list-1", "t1", "new", "some notes")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != "Task updated: new" {
		t.Errorf("Update = %q", got)
	}
	if updateBody["title"] != "new" {
		t.Errorf("update title = %v, want new", updateBody["title"])
	}
	if updateBody["status"] != "needsAction" {
		t.Errorf("update dropped fetched status, body = %v", updateBody)
	}
}

func TestDelete(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	got, err := c.Delete(context.Background(), nil, "list-1", "t1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got != "Task deleted." {
		t.Errorf("Delete = %q", got)
	}
}

func TestCreateUpstreamNotFound(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"code": 404, "message": "task list not found"}}`)
	})

	_, err := c.Create(context.Background(), nil, "missing", "title", "")
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %T (%v), want *googleapi.Error", err, err)
	}
	if gerr.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", gerr.Code)
	}
}
