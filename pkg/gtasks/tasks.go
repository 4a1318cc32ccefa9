// Package gtasks wraps the Google Tasks API for zephyr's tools.
package gtasks

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/zephyrlabs/zephyr/pkg/googleauth"
)

// maxTaskLists bounds the task-list listing, matching the voice-friendly
// summary size.
const maxTaskLists = 10

// Client performs Google Tasks operations on behalf of one invocation.
type Client struct {
	// opts overrides the authenticated transport; used by tests.
	opts []option.ClientOption
}

// New creates a tasks client.
func New() *Client {
	return &Client{}
}

func (c *Client) service(ctx context.Context, cred *googleauth.Credential) (*tasks.Service, error) {
	opts := c.opts
	if opts == nil {
		opts = []option.ClientOption{option.WithTokenSource(cred.TokenSource(ctx))}
	}
	return tasks.NewService(ctx, opts...)
}

// TaskLists lists the user's task lists as "- title (id)" lines.
func (c *Client) TaskLists(ctx context.Context, cred *googleauth.Credential) (string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("creating tasks service: %w", err)
	}

	res, err := svc.Tasklists.List().MaxResults(maxTaskLists).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(res.Items) == 0 {
		return "No task lists found.", nil
	}

	var b strings.Builder
	b.WriteString("Task lists:\n")
	for _, item := range res.Items {
		fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Id)
	}
	return b.String(), nil
}

// Tasks lists the tasks in one task list.
func (c *Client) Tasks(ctx context.Context, cred *googleauth.Credential, listID string) (string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("creating tasks service: %w", err)
	}

	res, err := svc.Tasks.List(listID).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(res.Items) == 0 {
		return fmt.Sprintf("No tasks found in task list %s.", listID), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tasks in list %s:\n", listID)
	for _, item := range res.Items {
		fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Id)
	}
	return b.String(), nil
}

// Create adds a new task to a task list.
func (c *Client) Create(ctx context.Context, cred *googleauth.Credential, listID, title, notes string) (string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("creating tasks service: %w", err)
	}

	task := &tasks.Task{Title: title, Notes: notes}
	created, err := svc.Tasks.Insert(listID, task).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task created: %s", created.Title), nil
}

// Update replaces a task's title and notes. The task is fetched first so
// the rest of its fields survive the update.
func (c *Client) Update(ctx context.Context, cred *googleauth.Credential, listID, taskID, title, notes string) (string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("creating tasks service: %w", err)
	}

	task, err := svc.Tasks.Get(listID, taskID).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	task.Title = title
	task.Notes = notes

	updated, err := svc.Tasks.Update(listID, taskID, task).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task updated: %s", updated.Title), nil
}

// Delete removes a task from a task list.
func (c *Client) Delete(ctx context.Context, cred *googleauth.Credential, listID, taskID string) (string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("creating tasks service: %w", err)
	}

	if err := svc.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
		return "", err
	}
	return "Task deleted.", nil
}
