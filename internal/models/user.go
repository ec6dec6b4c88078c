package models

import "time"

type User struct {
	ID           int64     `json:"id,string"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
