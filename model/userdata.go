package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const RoleAdmin string = "admin"

type UserData struct {
	Id             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Login          string             `json:"login" bson:"login,omitempty"`
	HashedPassword string             `json:"-" bson:"password_hash,omitempty"`
	Role           string             `json:"role" bson:"role,omitempty"`
}

func (u UserData) IsAdmin() bool {
	return u.Role == RoleAdmin
}
