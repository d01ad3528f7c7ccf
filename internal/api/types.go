package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyResult is returned when the backend answers successfully but the
// requested entity is absent from the response.
var ErrEmptyResult = errors.New("api: entity not found in response")

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d on %s", e.StatusCode, e.Path)
}

// IsStatusError reports whether err (or any error in its chain) is a
// StatusError.
func IsStatusError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// Post is one user-generated-content item. Fields beyond the ones the
// router inspects are preserved in Raw and travel with the navigation
// params untouched.
type Post struct {
	ID            string          `json:"_id"`
	ContentType   string          `json:"contentType"`
	IsLiked       bool            `json:"isLiked"`
	Likes         int             `json:"likes"`
	CommentsCount int             `json:"commentsCount"`
	Raw           json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the modeled fields and keeps the full document.
func (p *Post) UnmarshalJSON(data []byte) error {
	type alias Post
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Post(a)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// ugcResponse is the envelope of GET /ugc/get-specific-ugc/{id}.
type ugcResponse struct {
	UGCs []Post `json:"ugcs"`
}

// Project is one project document. Like Post, the full document rides
// along in Raw.
type Project struct {
	ID  string          `json:"_id"`
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the modeled fields and keeps the full document.
func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Project(a)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// projectResponse is the envelope of GET /project/get-project/{id}.
type projectResponse struct {
	Project *Project `json:"project"`
}
