package employee

import (
	"time"

	"github.com/frahmantamala/hr-portal/internal/core/user"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

type Company struct {
	Name string `json:"name"`
}

// Employee is a transient copy of a backend record. AvailableSlots hold
// RFC 3339 timestamps.
type Employee struct {
	ID             string     `json:"id,omitempty"`
	Name           string     `json:"name"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Website        string     `json:"website,omitempty"`
	Role           user.Role  `json:"role"`
	IsActive       bool       `json:"isActive"`
	Skills         []string   `json:"skills"`
	AvailableSlots []string   `json:"availableSlots"`
	Address        Address    `json:"address"`
	Company        Company    `json:"company"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// Patch is a partial update. Nil fields are left out of the request.
type Patch struct {
	Name           *string    `json:"name,omitempty"`
	Username       *string    `json:"username,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Website        *string    `json:"website,omitempty"`
	Role           *user.Role `json:"role,omitempty"`
	IsActive       *bool      `json:"isActive,omitempty"`
	Skills         *[]string  `json:"skills,omitempty"`
	AvailableSlots *[]string  `json:"availableSlots,omitempty"`
	Address        *Address   `json:"address,omitempty"`
	Company        *Company   `json:"company,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Username == nil && p.Email == nil && p.Phone == nil &&
		p.Website == nil && p.Role == nil && p.IsActive == nil && p.Skills == nil &&
		p.AvailableSlots == nil && p.Address == nil && p.Company == nil
}
