package clickup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/schema"
)

// GetTeams returns the teams (workspaces) the token has access to.
func (c *Client) GetTeams(ctx context.Context) ([]schema.Team, error) {
	const path = "team"
	body, err := c.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[schema.Team](path, body, "teams")
}

// GetSpaces returns the spaces of a team.
func (c *Client) GetSpaces(ctx context.Context, teamID string, archived bool) ([]schema.Space, error) {
	path := fmt.Sprintf("team/%s/space", teamID)
	body, err := c.Get(ctx, path, Params{"archived": archived})
	if err != nil {
		return nil, err
	}
	return decodeList[schema.Space](path, body, "spaces")
}

// GetFoldersRaw returns the folders of a space as untyped records, each with
// its lists embedded.
func (c *Client) GetFoldersRaw(ctx context.Context, spaceID string, archived bool) ([]map[string]any, error) {
	return c.getRawRecords(ctx, fmt.Sprintf("space/%s/folder", spaceID), archived)
}

// GetFolderlessListsRaw returns the lists of a space that are not inside a
// folder as untyped records.
func (c *Client) GetFolderlessListsRaw(ctx context.Context, spaceID string, archived bool) ([]map[string]any, error) {
	return c.getRawRecords(ctx, fmt.Sprintf("space/%s/list", spaceID), archived)
}

// GetFolders returns the folders of a space, each with its lists embedded.
func (c *Client) GetFolders(ctx context.Context, spaceID string, archived bool) ([]schema.Folder, error) {
	path := fmt.Sprintf("space/%s/folder", spaceID)
	body, err := c.GetRaw(ctx, path, Params{"archived": archived}, true)
	if err != nil {
		return nil, err
	}
	return decodeList[schema.Folder](path, body, "")
}

// GetFolderlessLists returns the lists of a space that are not inside a folder.
func (c *Client) GetFolderlessLists(ctx context.Context, spaceID string, archived bool) ([]schema.List, error) {
	path := fmt.Sprintf("space/%s/list", spaceID)
	body, err := c.GetRaw(ctx, path, Params{"archived": archived}, true)
	if err != nil {
		return nil, err
	}
	return decodeList[schema.List](path, body, "")
}

// GetListCustomFields returns the custom fields available on a list.
func (c *Client) GetListCustomFields(ctx context.Context, listID string) ([]schema.CustomFieldDefinition, error) {
	path := fmt.Sprintf("list/%s/field", listID)
	body, err := c.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[schema.CustomFieldDefinition](path, body, "fields")
}

func (c *Client) getRawRecords(ctx context.Context, path string, archived bool) ([]map[string]any, error) {
	body, err := c.GetRaw(ctx, path, Params{"archived": archived}, true)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, newDecodeError(path, body, err)
	}
	return records, nil
}
