// Package navigator defines the declarative screen navigation contract
// and the route/param builders the click router uses. The host platform
// owns the actual screen stack; this package only names destinations.
package navigator

// Params is the parameter object passed with a navigation request.
type Params map[string]interface{}

// Navigator accepts declarative (route, params) navigation requests. No
// return value is consumed; a request that cannot be honored is the host's
// concern.
type Navigator interface {
	Navigate(route string, params Params)
}

// Route names understood by the host application's screen stack.
const (
	RoutePrivateChat       = "privateChat"
	RouteFeedDetail        = "FeedDetailExp"
	RouteProjectDetail     = "ProjectDetailRewamped"
	RouteBottomBar         = "BottomBar"
	RouteProfileScreen     = "ProfileScreen"
	RouteOtherProfile      = "otherProfileScreen"
	RouteOtherBusiness     = "otherBusinessScreen"
	RouteRatingsAndReviews = "RatingsAndReviews"
)
