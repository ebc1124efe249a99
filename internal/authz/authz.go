// Package authz holds the single capability table consulted by both the
// marketplace store and the HTTP layer. Role gating lives here and nowhere
// else; handlers and store transitions ask Can instead of comparing roles
// inline.
package authz

// Action identifies a privileged operation.
type Action string

const (
	ActionUploadAsset    Action = "asset.upload"
	ActionModerateAsset  Action = "asset.moderate"
	ActionDeleteAnyAsset Action = "asset.delete_any"
	ActionManageTags     Action = "tag.manage"
	ActionManageTickets  Action = "ticket.manage"
	ActionCreateAdmin    Action = "user.create_admin"
	ActionBroadcast      Action = "message.broadcast"
)

var capabilities = map[Action][]string{
	ActionUploadAsset:    {"creator", "admin", "owner"},
	ActionModerateAsset:  {"admin", "owner"},
	ActionDeleteAnyAsset: {"admin", "owner"},
	ActionManageTags:     {"admin", "owner"},
	ActionManageTickets:  {"admin", "owner"},
	ActionCreateAdmin:    {"admin", "owner"},
	ActionBroadcast:      {"admin", "owner"},
}

// Can reports whether the role may execute the action. Unknown actions and
// unknown roles are denied.
func Can(role string, action Action) bool {
	for _, allowed := range capabilities[action] {
		if role == allowed {
			return true
		}
	}
	return false
}
