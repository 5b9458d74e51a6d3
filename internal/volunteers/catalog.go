package volunteers

// Task describes one volunteer task from the static catalog.
type Task struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Slots    int    `json:"slots"`
}

const (
	CategoryPreEventSetup    = "Pre-Event Setup"
	CategoryEventSupport     = "Event Support"
	CategoryFoodRefreshments = "Food & Refreshments"
	CategoryPostEvent        = "Post-Event"
)

// taskCatalog is the authoritative task list. Task IDs are stable strings
// persisted in volunteer_task_assignments.
var taskCatalog = []Task{
	{ID: "1", Name: "Venue Setup - Tables & Chairs", Category: CategoryPreEventSetup, Slots: 4},
	{ID: "2", Name: "Technical Equipment Setup", Category: CategoryPreEventSetup, Slots: 3},
	{ID: "3", Name: "Registration Desk Setup", Category: CategoryPreEventSetup, Slots: 2},
	{ID: "4", Name: "Signage & Wayfinding Installation", Category: CategoryPreEventSetup, Slots: 2},
	{ID: "5", Name: "Registration Desk Staff", Category: CategoryEventSupport, Slots: 4},
	{ID: "6", Name: "Technical Support Team", Category: CategoryEventSupport, Slots: 3},
	{ID: "7", Name: "Workshop Assistant", Category: CategoryEventSupport, Slots: 4},
	{ID: "8", Name: "General Event Support", Category: CategoryEventSupport, Slots: 6},
	{ID: "9", Name: "Meal Distribution Coordination", Category: CategoryFoodRefreshments, Slots: 4},
	{ID: "10", Name: "Snack Station Management", Category: CategoryFoodRefreshments, Slots: 2},
	{ID: "11", Name: "Dietary Restrictions Support", Category: CategoryFoodRefreshments, Slots: 2},
	{ID: "12", Name: "Venue Cleanup", Category: CategoryPostEvent, Slots: 6},
	{ID: "13", Name: "Equipment Teardown", Category: CategoryPostEvent, Slots: 4},
	{ID: "14", Name: "Lost & Found Management", Category: CategoryPostEvent, Slots: 2},
}

var tasksByID = func() map[string]Task {
	m := make(map[string]Task, len(taskCatalog))
	for _, t := range taskCatalog {
		m[t.ID] = t
	}
	return m
}()

// Catalog returns the full task list in catalog order.
func Catalog() []Task {
	out := make([]Task, len(taskCatalog))
	copy(out, taskCatalog)
	return out
}

// TaskByID looks up a task from the catalog.
func TaskByID(id string) (Task, bool) {
	t, ok := tasksByID[id]
	return t, ok
}
