package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User status constants
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User represents a staff member
type User struct {
	Base           `bson:",inline"`
	Names          string             `json:"names" bson:"names"`
	Surnames       string             `json:"surnames" bson:"surnames"`
	Email          string             `json:"email" bson:"email"`
	Status         string             `json:"status" bson:"status"`
	RoleName       string             `json:"role_name,omitempty" bson:"role_name,omitempty"`
	RoleID         primitive.ObjectID `json:"role_id,omitempty" bson:"role_id,omitempty"`
	Address        string             `json:"address,omitempty" bson:"address,omitempty"`
	Phone          string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Specialty      []string           `json:"specialty,omitempty" bson:"specialty,omitempty"`
	ExternalUserID string             `json:"external_user_id,omitempty" bson:"external_user_id,omitempty"`
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	Names          string   `json:"names" binding:"required"`
	Surnames       string   `json:"surnames" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	Status         string   `json:"status" binding:"omitempty,oneof=active inactive suspended"`
	RoleName       *string  `json:"role_name"`
	RoleID         *string  `json:"role_id"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	Specialty      []string `json:"specialty"`
	ExternalUserID string   `json:"external_user_id"`
}

// UpdateUserRequest represents user update parameters
type UpdateUserRequest struct {
	Names     *string   `json:"names"`
	Surnames  *string   `json:"surnames"`
	Email     *string   `json:"email" binding:"omitempty,email"`
	Status    *string   `json:"status" binding:"omitempty,oneof=active inactive suspended"`
	RoleName  *string   `json:"role_name"`
	RoleID    *string   `json:"role_id"`
	Address   *string   `json:"address"`
	Phone     *string   `json:"phone"`
	Specialty *[]string `json:"specialty"`
}

// UserFilters represents user search parameters
type UserFilters struct {
	Search string `form:"search"`
	Role   string `form:"role"`
	Status string `form:"status"`
	Pagination
}
