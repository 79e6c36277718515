package model

import (
	"time"
)

type Hospital struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	City      string    `json:"city" bson:"city" validate:"required,min=2,max=50"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,min=2,max=200"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type HospitalUpdate struct {
	Name    string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	City    string `json:"city,omitempty" validate:"omitempty,min=2,max=50"`
	Address string `json:"address,omitempty" validate:"omitempty,min=2,max=200"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,e164"`
}
