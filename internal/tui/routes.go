package tui

import (
	"strings"

	"github.com/julianstephens/activities/internal/constants"
)

// Route is a parsed navigation path.
type Route struct {
	State constants.SessionState
	ID    string
}

// ParseRoute maps the store's navigation paths onto views:
//
//	/activities       dashboard
//	/activities/{id}  details
//	/manage/{id}      edit form
//	/createActivity   create form
func ParseRoute(path string) (Route, bool) {
	path = "/" + strings.Trim(path, "/")

	switch {
	case path == constants.RouteActivities:
		return Route{State: constants.StateDashboard}, true
	case path == constants.RouteCreate:
		return Route{State: constants.StateForm}, true
	}

	for prefix, state := range map[string]constants.SessionState{
		constants.RouteActivities + "/": constants.StateDetails,
		constants.RouteManage + "/":     constants.StateForm,
	} {
		if id, ok := strings.CutPrefix(path, prefix); ok && id != "" && !strings.Contains(id, "/") {
			return Route{State: state, ID: id}, true
		}
	}
	return Route{}, false
}

// ManagePath is the edit route for id.
func ManagePath(id string) string {
	return constants.RouteManage + "/" + id
}
