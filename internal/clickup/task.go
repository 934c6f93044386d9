package clickup

import (
	"context"
	"fmt"
	"iter"
	"maps"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/schema"
)

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, taskID string, includeSubtasks bool) (*schema.Task, error) {
	path := fmt.Sprintf("task/%s/", taskID)
	params := Params{}
	if includeSubtasks {
		params["include_subtasks"] = "1"
	}
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return decodeOne[schema.Task](path, body)
}

// GetFilteredTeamTasks pages through the tasks of a team matching params.
// Pages are requested from 0 upwards until a page comes back empty. Every
// range over the returned sequence starts again at page 0.
func (c *Client) GetFilteredTeamTasks(ctx context.Context, teamID string, params Params) iter.Seq2[*schema.Task, error] {
	path := fmt.Sprintf("team/%s/task", teamID)

	return func(yield func(*schema.Task, error) bool) {
		for page := 0; ; page++ {
			pageParams := maps.Clone(params)
			if pageParams == nil {
				pageParams = Params{}
			}
			pageParams["page"] = page

			body, err := c.Get(ctx, path, pageParams)
			if err != nil {
				yield(nil, err)
				return
			}
			tasks, err := decodeList[schema.Task](path, body, "tasks")
			if err != nil {
				yield(nil, err)
				return
			}
			if len(tasks) == 0 {
				return
			}

			for i := range tasks {
				if !yield(&tasks[i], nil) {
					return
				}
			}
		}
	}
}

// GetViewTasks pages through the tasks of a view. Unlike team tasks, the view
// endpoint flags its final page with last_page, whose tasks are included.
func (c *Client) GetViewTasks(ctx context.Context, viewID string) iter.Seq2[*schema.Task, error] {
	path := fmt.Sprintf("view/%s/task", viewID)

	return func(yield func(*schema.Task, error) bool) {
		for page := 0; ; page++ {
			body, err := c.Get(ctx, path, Params{"page": page})
			if err != nil {
				yield(nil, err)
				return
			}
			tasks, err := decodeList[schema.Task](path, body, "tasks")
			if err != nil {
				yield(nil, err)
				return
			}
			var lastPage bool
			if err := unmarshalField(body, "last_page", &lastPage); err != nil {
				yield(nil, newDecodeError(path, body, err))
				return
			}

			for i := range tasks {
				if !yield(&tasks[i], nil) {
					return
				}
			}
			if lastPage {
				return
			}
		}
	}
}

// UpdateTask applies data to a task and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, data any) (*schema.Task, error) {
	path := fmt.Sprintf("task/%s", taskID)
	body, err := c.Put(ctx, path, data, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[schema.Task](path, body)
}

// SetCustomFieldValue sets the value of a custom field on a task.
func (c *Client) SetCustomFieldValue(ctx context.Context, taskID, fieldID string, value any) error {
	path := fmt.Sprintf("task/%s/field/%s/", taskID, fieldID)
	_, err := c.Post(ctx, path, map[string]any{"value": value}, nil)
	return err
}
