package domain

// Action is a permission-checked operation.
type Action string

const (
	ActionManageUsers       Action = "manage_users"
	ActionManageProducts    Action = "manage_products"
	ActionManageOrders      Action = "manage_orders"
	ActionManageTrust       Action = "manage_trust"
	ActionViewAnalytics     Action = "view_analytics"
	ActionManageOwnProducts Action = "manage_own_products"
	ActionViewOwnOrders     Action = "view_own_orders"
	ActionUpdateProfile     Action = "update_profile"
	ActionPlaceOrders       Action = "place_orders"
	ActionSubmitReview      Action = "submit_review"
)

var rolePermissions = map[Role][]Action{
	RoleAdmin: {
		ActionManageUsers,
		ActionManageProducts,
		ActionManageOrders,
		ActionManageTrust,
		ActionViewAnalytics,
	},
	RoleVendor: {
		ActionManageOwnProducts,
		ActionViewOwnOrders,
		ActionUpdateProfile,
	},
	RoleCustomer: {
		ActionPlaceOrders,
		ActionViewOwnOrders,
		ActionUpdateProfile,
		ActionSubmitReview,
	},
}

// Allows is the single authorization policy: role × action → allow/deny.
func Allows(role Role, act Action) bool {
	for _, a := range rolePermissions[role] {
		if a == act {
			return true
		}
	}
	return false
}

// PermissionsFor returns a copy of the permission set granted to role.
func PermissionsFor(role Role) []Action {
	perms := rolePermissions[role]
	out := make([]Action, len(perms))
	copy(out, perms)
	return out
}
