package mockapi

import (
	"errors"
	"time"

	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/employee"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password"

type seedUser struct {
	username string
	email    string
	role     user.Role
}

var seedUsers = []seedUser{
	{username: "admin", email: "admin@example.com", role: user.RoleAdmin},
	{username: "editor", email: "editor@example.com", role: user.RoleEditor},
	{username: "viewer", email: "viewer@example.com", role: user.RoleViewer},
}

// Seed creates one account per role and a few employees. Accounts that
// already exist are left alone.
func Seed(s *Store) error {
	for _, su := range seedUsers {
		_, err := s.CreateUser(su.username, su.email, SeedPassword, su.role)
		if err != nil && !errors.Is(err, ErrUsernameTaken) && !errors.Is(err, ErrEmailTaken) {
			return err
		}
	}

	slot := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Hour).Format(time.RFC3339)
	samples := []employee.Employee{
		{
			Name: "Leanne Graham", Username: "bret", Email: "sincere@april.biz",
			Phone: "1-770-736-8031", Website: "https://hildegard.org", Role: user.RoleAdmin,
			IsActive: true, Skills: []string{"go", "postgres"}, AvailableSlots: []string{slot},
			Address: employee.Address{Street: "Kulas Light", City: "Gwenborough", Zipcode: "92998"},
			Company: employee.Company{Name: "Romaguera-Crona"},
		},
		{
			Name: "Ervin Howell", Username: "antonette", Email: "shanna@melissa.tv",
			Role: user.RoleEditor, IsActive: true, Skills: []string{"typescript"},
			Address: employee.Address{Street: "Victor Plains", City: "Wisokyburgh", Zipcode: "90566"},
			Company: employee.Company{Name: "Deckow-Crist"},
		},
		{
			Name: "Clementine Bauch", Username: "samantha", Email: "nathan@yesenia.net",
			Role: user.RoleViewer, IsActive: false,
			Address: employee.Address{Street: "Douglas Extension", City: "McKenziehaven", Zipcode: "59590"},
			Company: employee.Company{Name: "Romaguera-Jacobson"},
		},
	}
	for _, e := range samples {
		if _, err := s.CreateEmployee(e); err != nil && !errors.Is(err, ErrUsernameTaken) && !errors.Is(err, ErrEmailTaken) {
			return err
		}
	}
	return nil
}
