package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/employee"
)

var (
	ErrUsernameTaken      = errors.New("Username already exists")
	ErrEmailTaken         = errors.New("Email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmployeeNotFound   = errors.New("Employee not found")
	ErrUserNotFound       = errors.New("User not found")
)

type account struct {
	user         user.User
	passwordHash []byte
}

// Store keeps users and employees in memory.
type Store struct {
	mu         sync.RWMutex
	bcryptCost int
	accounts   map[string]*account
	employees  map[string]employee.Employee
	now        func() time.Time
}

func NewStore(bcryptCost int) *Store {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		bcryptCost: bcryptCost,
		accounts:   make(map[string]*account),
		employees:  make(map[string]employee.Employee),
		now:        time.Now,
	}
}

func (s *Store) CreateUser(username, email, password string, role user.Role) (user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return user.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Username, username) {
			return user.User{}, ErrUsernameTaken
		}
		if strings.EqualFold(a.user.Email, email) {
			return user.User{}, ErrEmailTaken
		}
	}

	u := user.User{ID: uuid.NewString(), Username: username, Email: email, Role: role}
	s.accounts[u.ID] = &account{user: u, passwordHash: hash}
	return u, nil
}

func (s *Store) Authenticate(email, password string) (user.User, error) {
	s.mu.RLock()
	var found *account
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) {
			found = a
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		return user.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(found.passwordHash, []byte(password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}
	return found.user, nil
}

func (s *Store) UserByID(id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return user.User{}, ErrUserNotFound
	}
	return a.user, nil
}

func (s *Store) ListEmployees(filter employee.Filter) employee.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]employee.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if filter.Role != "" && e.Role != filter.Role {
			continue
		}
		if search != "" && !matches(e, search) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.CreatedAt.Equal(*b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(*b.CreatedAt)
	})

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = employee.DefaultPage
	}
	if limit < 1 {
		limit = employee.DefaultLimit
	}
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return employee.Page{Employees: matched[start:end], Total: len(matched)}
}

func matches(e employee.Employee, search string) bool {
	for _, field := range []string{e.Name, e.Username, e.Email} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (s *Store) CreateEmployee(e employee.Employee) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUniqueLocked("", e.Username, e.Email); err != nil {
		return employee.Employee{}, err
	}

	now := s.now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt = &now
	e.UpdatedAt = &now
	if e.Skills == nil {
		e.Skills = []string{}
	}
	if e.AvailableSlots == nil {
		e.AvailableSlots = []string{}
	}
	s.employees[e.ID] = e
	return e, nil
}

func (s *Store) UpdateEmployee(id string, p employee.Patch) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.employees[id]
	if !ok {
		return employee.Employee{}, ErrEmployeeNotFound
	}

	username, email := e.Username, e.Email
	if p.Username != nil {
		username = *p.Username
	}
	if p.Email != nil {
		email = *p.Email
	}
	if err := s.checkUniqueLocked(id, username, email); err != nil {
		return employee.Employee{}, err
	}

	applyPatch(&e, p)
	now := s.now().UTC()
	e.UpdatedAt = &now
	s.employees[id] = e
	return e, nil
}

func (s *Store) DeleteEmployee(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(s.employees, id)
	return nil
}

func (s *Store) checkUniqueLocked(exceptID, username, email string) error {
	for id, other := range s.employees {
		if id == exceptID {
			continue
		}
		if strings.EqualFold(other.Username, username) {
			return ErrUsernameTaken
		}
		if strings.EqualFold(other.Email, email) {
			return ErrEmailTaken
		}
	}
	return nil
}

func applyPatch(e *employee.Employee, p employee.Patch) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Username != nil {
		e.Username = *p.Username
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Phone != nil {
		e.Phone = *p.Phone
	}
	if p.Website != nil {
		e.Website = *p.Website
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.IsActive != nil {
		e.IsActive = *p.IsActive
	}
	if p.Skills != nil {
		e.Skills = append([]string(nil), (*p.Skills)...)
	}
	if p.AvailableSlots != nil {
		e.AvailableSlots = append([]string(nil), (*p.AvailableSlots)...)
	}
	if p.Address != nil {
		e.Address = *p.Address
	}
	if p.Company != nil {
		e.Company = *p.Company
	}
}

// Stats reports how many accounts and employees are held.
func (s *Store) Stats() (users, employees int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), len(s.employees)
}
