package constants

import "time"

// Category is the kind of an activity as offered by the form.
type Category string

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName            = "activities"
	DefaultKeyringUser = "api-token"
	DefaultConfigDir   = "~/.config/activities"
	DefaultAPIURL      = "http://localhost:5000/api"
	DefaultHTTPTimeout = 10 * time.Second
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DisplayDateFormat is used for day headers in list output
	DisplayDateFormat = "Monday, January 2, 2006"

	// SubmitErrorMessage is shown whenever a create or edit request fails
	SubmitErrorMessage = "Problem submitting data"

	// Description must be longer than this many characters
	MinDescriptionLength = 5

	// Routes
	RouteActivities = "/activities"
	RouteCreate     = "/createActivity"
	RouteManage     = "/manage"

	// Notify constants
	NotifierLockfileName   = "activities-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.activities"
	TrayExecutablePrefix   = "activities-tray"
	ToastDuration          = 4 * time.Second

	// Server defaults
	DefaultServerAddr = ":5000"
	DefaultDBPath     = "~/.config/activities/activities.db"
	DefaultJWTIssuer  = "activities"
	DefaultTokenTTL   = 24 * time.Hour

	// Categories
	CategoryDrinks  Category = "drinks"
	CategoryCulture Category = "culture"
	CategoryFilm    Category = "film"
	CategoryFood    Category = "food"
	CategoryMusic   Category = "music"
	CategoryTravel  Category = "travel"
)

// Session States
const (
	StateDashboard SessionState = iota
	StateDetails
	StateForm
	StateConfirmDelete
)

// Categories lists the selectable categories in display order.
var Categories = []Category{
	CategoryDrinks,
	CategoryCulture,
	CategoryFilm,
	CategoryFood,
	CategoryMusic,
	CategoryTravel,
}

// IsValidCategory reports whether c is one of the known categories.
func IsValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
