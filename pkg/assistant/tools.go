package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/zephyrlabs/zephyr/internal/log"
	"github.com/zephyrlabs/zephyr/pkg/gcal"
)

// Tool represents a callable operation exposed to the conversational
// runtime. Handlers always return a user-presentable string; they never
// return an error to the session.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     func(args map[string]any) (string, error)
}

// stringArg reads a string argument, tolerating absence.
func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// intArg reads a numeric argument (JSON numbers arrive as float64),
// falling back to def when absent or not positive.
func intArg(args map[string]any, key string, def int64) int64 {
	if v, ok := args[key].(float64); ok && v > 0 {
		return int64(v)
	}
	return def
}

// Tools returns the tool registry bound to one caller identity. Each
// handler runs as an independent unit of work; the store is the only
// shared state behind them.
func (a *Assistant) Tools(identity string) []Tool {
	return []Tool{
		{
			Name:        "update_google_creds",
			Description: "Update the Google credentials for the user. This tool must be called before any other Google tool.",
			Parameters: map[string]any{
				"creds_json": map[string]any{
					"type":        "string",
					"description": "The serialized Google OAuth credentials",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				blob := stringArg(args, "creds_json")
				if blob == "" {
					return "No credentials were provided.", nil
				}
				if err := a.UpdateCredentials(context.Background(), identity, []byte(blob)); err != nil {
					log.Error("saving credentials failed", "identity", identity, "err", err)
					return msgUnexpected, nil
				}
				return "Google credentials updated.", nil
			},
		},
		{
			Name:        "lookup_weather",
			Description: "Look up current weather information in the given location. If the location is not supported, tell the user the location's weather is unavailable.",
			Parameters: map[string]any{
				"location": map[string]any{
					"type":        "string",
					"description": "The location to look up weather information for (e.g. city name)",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				log.Info("looking up weather", "location", stringArg(args, "location"))
				return "sunny with a temperature of 70 degrees.", nil
			},
		},
		{
			Name:        "get_current_datetime",
			Description: "Returns the current date and time in ISO format.",
			Parameters:  map[string]any{},
			Handler: func(args map[string]any) (string, error) {
				return a.now().Format(time.RFC3339), nil
			},
		},
		{
			Name:        "schedule_google_calendar_event",
			Description: "Schedule an event in Google Calendar.",
			Parameters: map[string]any{
				"summary": map[string]any{
					"type":        "string",
					"description": "The summary or title of the event",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "The description of the event",
				},
				"start_time": map[string]any{
					"type":        "string",
					"description": "The start time of the event in 'YYYY-MM-DDTHH:MM:SS' format",
				},
				"end_time": map[string]any{
					"type":        "string",
					"description": "The end time of the event in 'YYYY-MM-DDTHH:MM:SS' format",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				ctx := context.Background()
				cred, msg := a.credentials(ctx, identity)
				if msg != "" {
					return msg, nil
				}

				startRaw := stringArg(args, "start_time")
				start, err := a.calendar.ParseTime(startRaw)
				if err != nil {
					return fmt.Sprintf("I couldn't understand the start time %q.", startRaw), nil
				}
				endRaw := stringArg(args, "end_time")
				end, err := a.calendar.ParseTime(endRaw)
				if err != nil {
					return fmt.Sprintf("I couldn't understand the end time %q.", endRaw), nil
				}

				result, err := a.calendar.AddEvent(ctx, cred, gcal.Event{
					Summary:     stringArg(args, "summary"),
					Description: stringArg(args, "description"),
					Start:       start,
					End:         end,
				})
				return collapse("schedule_google_calendar_event", result, err), nil
			},
		},
		{
			Name:        "get_next_scheduled_google_calendar_events",
			Description: "Retrieve the next events in Google Calendar.",
			Parameters: map[string]any{
				"count": map[string]any{
					"type":        "integer",
					"description": "The number of upcoming events to retrieve (default is 2)",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				ctx := context.Background()
				cred, msg := a.credentials(ctx, identity)
				if msg != "" {
					return msg, nil
				}
				result, err := a.calendar.UpcomingEvents(ctx, cred, intArg(args, "count", 2))
				return collapse("get_next_scheduled_google_calendar_events", result, err), nil
			},
		},
		{
			Name:        "send_google_mail",
			Description: "Send an email using Gmail.",
			Parameters: map[string]any{
				"to": map[string]any{
					"type":        "string",
					"description": "The recipient of the email",
				},
				"subject": map[string]any{
					"type":        "string",
					"description": "The subject of the email",
				},
				"message": map[string]any{
					"type":        "string",
					"description": "The content of the email",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				ctx := context.Background()
				cred, msg := a.credentials(ctx, identity)
				if msg != "" {
					return msg, nil
				}
				result, err := a.mail.Send(ctx, cred,
					stringArg(args, "to"),
					stringArg(args, "subject"),
					stringArg(args, "message"))
				return collapse("send_google_mail", result, err), nil
			},
		},
		{
			Name:        "list_unread_emails",
			Description: "List the most recent unread emails.",
			Parameters: map[string]any{
				"count": map[string]any{
					"type":        "integer",
					"description": "The number of unread emails to list (default is 5)",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				ctx := context.Background()
				cred, msg := a.credentials(ctx, identity)
				if msg != "" {
					return msg, nil
				}
				result, err := a.mail.Unread(ctx, cred, intArg(args, "count", 5))
				return collapse("list_unread_emails", result, err), nil
			},
		},
		{
			Name:        "list_google_task_lists",
			Description: "List the user's Google Task lists.",
			Parameters:  map[string]any{},
			Handler: func(args map[string]any) (string, error) {
				ctx := context.Background()
				cred, msg := a.credentials(ctx, identity)
				if msg != "" {
					return msg, nil
				}
				result, err := a.tasks.TaskLists(ctx, cred)
				return collapse("list_google_task_lists", result, err), nil
			},
		},
		{
			Name:        "list_google_tasks",
			Description: "List the tasks in a specific Google Task list.",
			Parameters: map[string]any{
				"task_list_id": map[string]any{
					"type":        "string",
					"description": "The id of the task list",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				ctx := context.Background()
				cred, msg := a.credentials(ctx, identity)
				if msg != "" {
					return msg, nil
				}
				result, err := a.tasks.Tasks(ctx, cred, stringArg(args, "task_list_id"))
				return collapse("list_google_tasks", result, err), nil
			},
		},
		{
			Name:        "create_google_task",
			Description: "Create a new task in a specific Google Task list.",
			Parameters: map[string]any{
				"task_list_id": map[string]any{
					"type":        "string",
					"description": "The id of the task list",
				},
				"title": map[string]any{
					"type":        "string",
					"description": "The title of the task",
				},
				"notes": map[string]any{
					"type":        "string",
					"description": "Optional notes for the task",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				ctx := context.Background()
				cred, msg := a.credentials(ctx, identity)
				if msg != "" {
					return msg, nil
				}
				result, err := a.tasks.Create(ctx, cred,
					stringArg(args, "task_list_id"),
					stringArg(args, "title"),
					stringArg(args, "notes"))
				return collapse("create_google_task", result, err), nil
			},
		},
		{
			Name:        "update_google_task",
			Description: "Update a task in a specific Google Task list.",
			Parameters: map[string]any{
				"task_list_id": map[string]any{
					"type":        "string",
					"description": "The id of the task list",
				},
				"task_id": map[string]any{
					"type":        "string",
					"description": "The id of the task to update",
				},
				"title": map[string]any{
					"type":        "string",
					"description": "The new title of the task",
				},
				"notes": map[string]any{
					"type":        "string",
					"description": "The new notes for the task",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				ctx := context.Background()
				cred, msg := a.credentials(ctx, identity)
				if msg != "" {
					return msg, nil
				}
				result, err := a.tasks.Update(ctx, cred,
					stringArg(args, "task_list_id"),
					stringArg(args, "task_id"),
					stringArg(args, "title"),
					stringArg(args, "notes"))
				return collapse("update_google_task", result, err), nil
			},
		},
		{
			Name:        "delete_google_task",
			Description: "Delete a task from a specific Google Task list.",
			Parameters: map[string]any{
				"task_list_id": map[string]any{
					"type":        "string",
					"description": "The id of the task list",
				},
				"task_id": map[string]any{
					"type":        "string",
					"description": "The id of the task to delete",
				},
			},
			Handler: func(args map[string]any) (string, error) {
				ctx := context.Background()
				cred, msg := a.credentials(ctx, identity)
				if msg != "" {
					return msg, nil
				}
				result, err := a.tasks.Delete(ctx, cred,
					stringArg(args, "task_list_id"),
					stringArg(args, "task_id"))
				return collapse("delete_google_task", result, err), nil
			},
		},
	}
}

// Dispatch routes one tool call by name and returns the user-facing
// result string. Unknown tools get prose, not an error; the session must
// keep flowing regardless of what the model asked for.
func (a *Assistant) Dispatch(identity, name string, args map[string]any) string {
	for _, tool := range a.Tools(identity) {
		if tool.Name != name {
			continue
		}
		result, err := tool.Handler(args)
		if err != nil {
			// Handlers phrase their own failures; this is a safety net.
			log.Error("tool handler returned error", "tool", name, "err", err)
			return msgUnexpected
		}
		return result
	}
	log.Warn("unknown tool requested", "tool", name)
	return fmt.Sprintf("I don't have a tool called %s.", name)
}
