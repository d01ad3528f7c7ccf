package navigator

import (
	"github.com/nhle/push-center/internal/api"
	"github.com/nhle/push-center/internal/model"
)

// ChatParams builds the params for the private chat screen.
func ChatParams(room *model.ChatRoom) Params {
	return Params{"roomData": room}
}

// PostParams builds the params for the feed detail screen. The fetched
// UGC list is passed whole so the screen can page from the given index.
func PostParams(posts []api.Post, index int, token string) Params {
	if index < 0 || index >= len(posts) {
		index = 0
	}
	contentType := posts[index].ContentType
	if contentType == "" {
		contentType = "post"
	}
	return Params{
		"posts":        posts,
		"currentIndex": index,
		"type":         contentType,
		"projectId":    posts[index].ID,
		"token":        token,
	}
}

// ProjectParams builds the params for the project detail screen.
func ProjectParams(project *api.Project, accountType, token string) Params {
	return Params{
		"feed":        project,
		"accountType": accountType,
		"token":       token,
		"pageName":    "home",
	}
}

// SelfProfile routes to the user's own profile tab on the bottom bar.
func SelfProfile() (string, Params) {
	return RouteBottomBar, Params{"screen": RouteProfileScreen}
}

// OtherProfile routes to another user's profile. Professional accounts
// get the business profile screen.
func OtherProfile(userID, accountType string) (string, Params) {
	route := RouteOtherProfile
	if accountType == "professional" {
		route = RouteOtherBusiness
	}
	return route, Params{
		"userId": userID,
		"isSelf": false,
	}
}

// RatingsParams builds the params for the ratings-and-reviews screen.
// profileJSON is the stored session user document.
func RatingsParams(profileJSON string) Params {
	return Params{"profile": profileJSON}
}
