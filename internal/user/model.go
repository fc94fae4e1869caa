package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	Password   string    `json:"-"` // hash, never exposed
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}
