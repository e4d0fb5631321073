package models

import "time"

// User is a registered chat account
// Collection / table: users
type User struct {
	ID           int64     `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
