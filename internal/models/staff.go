package models

import "time"

type Seller struct {
	SellerID     string    `json:"seller_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Courier struct {
	CourierID    string    `json:"courier_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Available    bool      `json:"available"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleCustomerManager Role = "EncargadoClientes"
	RoleLogistics       Role = "Logistica"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomerManager, RoleLogistics:
		return true
	}
	return false
}

// User is a staff account together with its role profile.
type User struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
