package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleViewer  Role = "viewer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAnalyst || r == RoleViewer
}

type Avatar struct {
	Data        []byte `bson:"data"`
	ContentType string `bson:"contentType"`
}

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username     string        `bson:"username" json:"username"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password" json:"-"`
	FirstName    string        `bson:"firstName" json:"firstName"`
	LastName     string        `bson:"lastName" json:"lastName"`
	Role         Role          `bson:"role" json:"role"`
	IsActive     bool          `bson:"isActive" json:"isActive"`
	LastLogin    *time.Time    `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	Avatar       *Avatar       `bson:"avatar,omitempty" json:"-"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the shape returned by the login and register endpoints.
type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

func (u *User) HasAvatar() bool {
	return u.Avatar != nil && len(u.Avatar.Data) > 0
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      Role
}
