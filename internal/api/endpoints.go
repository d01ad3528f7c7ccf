package api

import "context"

// GetPost fetches the UGC items for a post id. The backend returns a list
// even for a single id; the whole list is forwarded so the feed screen can
// page through it.
func (c *Client) GetPost(ctx context.Context, postID string) ([]Post, error) {
	var resp ugcResponse
	if err := c.get(ctx, "/ugc/get-specific-ugc/"+postID, &resp); err != nil {
		return nil, err
	}
	if len(resp.UGCs) == 0 {
		return nil, ErrEmptyResult
	}
	return resp.UGCs, nil
}

// GetProject fetches a single project by id.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var resp projectResponse
	if err := c.get(ctx, "/project/get-project/"+projectID, &resp); err != nil {
		return nil, err
	}
	if resp.Project == nil {
		return nil, ErrEmptyResult
	}
	return resp.Project, nil
}

// MarkRoomRead marks every message in a chat room as read. Callers treat
// it as best-effort: chat navigation proceeds whether or not it succeeds.
func (c *Client) MarkRoomRead(ctx context.Context, roomID string) error {
	return c.postChatForm(ctx, "/message/read-all", map[string]string{
		"room_id": roomID,
	})
}
