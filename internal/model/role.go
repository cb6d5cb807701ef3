package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleName is one of the fixed closed set of catalog roles. The enumeration
// is shared by request validation and the role-consistency resolver so the
// two can never drift apart.
type RoleName string

const (
	RoleAdmin        RoleName = "Admin"
	RoleDentist      RoleName = "Dentist"
	RoleAssistant    RoleName = "Assistant"
	RoleReceptionist RoleName = "Receptionist"
)

// RoleCatalog returns the closed enumeration in seeding order.
func RoleCatalog() []RoleName {
	return []RoleName{RoleAdmin, RoleDentist, RoleAssistant, RoleReceptionist}
}

// ValidRoleName reports whether name belongs to the closed enumeration.
func ValidRoleName(name string) bool {
	switch RoleName(name) {
	case RoleAdmin, RoleDentist, RoleAssistant, RoleReceptionist:
		return true
	}
	return false
}

// RoleSeedDescriptions holds the fixed descriptions used by catalog seeding.
var RoleSeedDescriptions = map[RoleName]string{
	RoleAdmin:        "Full administrative access to the clinic",
	RoleDentist:      "Clinical practitioner with patient record access",
	RoleAssistant:    "Chairside assistant with limited record access",
	RoleReceptionist: "Front desk scheduling and patient intake",
}

type Role struct {
	Base        `bson:",inline"`
	Name        RoleName `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	Permissions []string `json:"permissions" bson:"permissions"`
}

// RoleRef carries the pair of role fields a record may reference a catalog
// role by. Either side may be absent; the resolver reconciles them.
type RoleRef struct {
	Name *string
	ID   *primitive.ObjectID
}

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,oneof=Admin Dentist Assistant Receptionist"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	// Name is immutable post-creation; only description and permissions
	// may change.
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
}
