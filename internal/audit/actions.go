package audit

// Action identifies an audited domain event. Values are persisted and must
// stay stable across releases.
type Action string

const (
	ActionMaterialsCreated Action = "materials.created"
	ActionMaterialsEdited  Action = "materials.edited"
	ActionMaterialsDeleted Action = "materials.deleted"

	ActionProductionRequestsCreated  Action = "production.requests.created"
	ActionProductionRequestsApproved Action = "production.requests.approved"
	ActionProductionRequestsViewed   Action = "production.requests.viewed"

	ActionUsersCreated         Action = "users.created"
	ActionUsersEdited          Action = "users.edited"
	ActionUsersPasswordChanged Action = "users.password.changed"

	ActionProductionLinesCreated Action = "production_lines.created"
	ActionProductionLinesEdited  Action = "production_lines.edited"
	ActionProductionLinesDeleted Action = "production_lines.deleted"
)

var allActions = []Action{
	ActionMaterialsCreated,
	ActionMaterialsEdited,
	ActionMaterialsDeleted,
	ActionProductionRequestsCreated,
	ActionProductionRequestsApproved,
	ActionProductionRequestsViewed,
	ActionUsersCreated,
	ActionUsersEdited,
	ActionUsersPasswordChanged,
	ActionProductionLinesCreated,
	ActionProductionLinesEdited,
	ActionProductionLinesDeleted,
}

// Actions lists the closed audit action catalog.
func Actions() []Action {
	out := make([]Action, len(allActions))
	copy(out, allActions)
	return out
}

// Valid reports whether a belongs to the action catalog.
func (a Action) Valid() bool {
	for _, known := range allActions {
		if a == known {
			return true
		}
	}
	return false
}
