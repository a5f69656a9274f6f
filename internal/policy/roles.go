package policy

import (
	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/internal/models"
)

// Resource names used in permissions.
const (
	ResourceClient       = "client"
	ResourceCategory     = "category"
	ResourceSeller       = "seller"
	ResourceOrder        = "order"
	ResourcePayment      = "payment"
	ResourceAttachment   = "attachment"
	ResourceUser         = "user"
	ResourceSetting      = "setting"
	ResourceNotification = "notification"
)

// businessPermissions is what every signed-in role may do.
var businessPermissions = []gate.Permission{
	gate.NewPermission(ResourceClient, gate.Wildcard),
	gate.NewPermission(ResourceCategory, gate.Wildcard),
	gate.NewPermission(ResourceSeller, gate.Wildcard),
	gate.NewPermission(ResourceOrder, gate.Wildcard),
	gate.NewPermission(ResourcePayment, gate.Wildcard),
	gate.NewPermission(ResourceAttachment, gate.Wildcard),
	gate.NewPermission(ResourceNotification, gate.ActionList),
	gate.NewPermission(ResourceNotification, gate.ActionSend),
}

// RoleProfiles maps each user role to its profile. Only admin manages users and settings.
func RoleProfiles() *gate.StaticResolver[string] {
	return gate.NewStaticResolver[string]().
		Set(string(models.RoleAdmin), gate.NewStaticProfile(string(models.RoleAdmin), gate.PermissionAll)).
		Set(string(models.RoleStaff), gate.NewStaticProfile(string(models.RoleStaff), businessPermissions...)).
		Set(string(models.RoleSeller), gate.NewStaticProfile(string(models.RoleSeller), businessPermissions...))
}
