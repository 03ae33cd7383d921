package domain

// Dashboard is the back-office overview.
type Dashboard struct {
	ActiveProjects int             `json:"activeProjects"`
	ActiveHotspots int             `json:"activeHotspots"`
	ActiveUsers    int             `json:"activeUsers"`
	TopProjects    []ProjectAccess `json:"topProjects"`
	DailyAccess    []DailyAccess   `json:"dailyAccess"`
}

// ProjectAccess counts visits of one project over the reporting window.
type ProjectAccess struct {
	ProjectID      string `json:"projectId"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Accesses       int    `json:"accesses"`
	UniqueVisitors int    `json:"uniqueVisitors"`
}

// DailyAccess is the number of visits on one calendar day (YYYY-MM-DD).
type DailyAccess struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

const (
	TopProjectsLimit = 5
	TopProjectsDays  = 30
	DailyAccessDays  = 7

	DefaultLogLimit = 50
	MaxLogLimit     = 200
)
