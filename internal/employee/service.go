package employee

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/gateway"
	"github.com/frahmantamala/hr-portal/internal/session"
)

const (
	basePath = "/employees"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Client is the typed employee API. Every call goes through the auth gateway.
type Client struct {
	gateway     auth.Gateway
	bus         *events.EventBus
	now         func() time.Time
	permissions auth.PermissionChecker
	store       *session.Store
	logger      *slog.Logger
}

type Option func(*Client)

// WithClock replaces time.Now for slot validation.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithEventBus(bus *events.EventBus) Option {
	return func(c *Client) {
		c.bus = bus
	}
}

// WithPermissions makes mutations check the session role first and fail with
// Forbidden before any network call.
func WithPermissions(checker auth.PermissionChecker, store *session.Store) Option {
	return func(c *Client) {
		c.permissions = checker
		c.store = store
	}
}

func NewClient(gw auth.Gateway, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{gateway: gw, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) List(ctx context.Context, filter Filter) (Page, error) {
	if err := filter.Validate(); err != nil {
		return Page{}, err
	}

	var page Page
	if _, err := c.gateway.DoJSON(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   basePath,
		Query:  filter.Query(),
	}, &page); err != nil {
		return Page{}, err
	}
	if page.Employees == nil {
		page.Employees = []Employee{}
	}
	return page, nil
}

func (c *Client) Create(ctx context.Context, e Employee) (Employee, error) {
	if err := c.authorize(c.canCreate); err != nil {
		return Employee{}, err
	}
	if err := Validate(e, c.now); err != nil {
		return Employee{}, err
	}

	var created Employee
	if _, err := c.gateway.DoJSON(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   basePath,
		Body:   e,
	}, &created); err != nil {
		return Employee{}, err
	}

	c.logger.Info("employee created", "employee_id", created.ID, "username", created.Username)
	c.invalidate(ctx, OperationCreate, created.ID)
	return created, nil
}

func (c *Client) Update(ctx context.Context, id string, patch Patch) (Employee, error) {
	if err := requireID(id); err != nil {
		return Employee{}, err
	}
	if err := c.authorize(c.canEdit); err != nil {
		return Employee{}, err
	}
	if err := ValidatePatch(patch, c.now); err != nil {
		return Employee{}, err
	}

	var updated Employee
	if _, err := c.gateway.DoJSON(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   basePath + "/" + url.PathEscape(id),
		Body:   patch,
	}, &updated); err != nil {
		return Employee{}, err
	}

	c.logger.Info("employee updated", "employee_id", id)
	c.invalidate(ctx, OperationUpdate, id)
	return updated, nil
}

func (c *Client) Delete(ctx context.Context, id string) (DeleteResult, error) {
	if err := requireID(id); err != nil {
		return DeleteResult{}, err
	}
	if err := c.authorize(c.canDelete); err != nil {
		return DeleteResult{}, err
	}

	var result DeleteResult
	if _, err := c.gateway.DoJSON(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   basePath + "/" + url.PathEscape(id),
	}, &result); err != nil {
		return DeleteResult{}, err
	}

	c.logger.Info("employee deleted", "employee_id", id)
	c.invalidate(ctx, OperationDelete, id)
	return result, nil
}

func (c *Client) canCreate(role user.Role) bool { return c.permissions.CanCreateEmployee(role) }
func (c *Client) canEdit(role user.Role) bool   { return c.permissions.CanEditEmployee(role) }
func (c *Client) canDelete(role user.Role) bool { return c.permissions.CanDeleteEmployee(role) }

func (c *Client) authorize(allowed func(user.Role) bool) error {
	if c.permissions == nil || c.store == nil {
		return nil
	}
	role, ok := c.store.Get().Role()
	if !ok {
		return internal.ErrNotLoggedIn
	}
	if !allowed(role) {
		return internal.ErrRoleNotAllowed
	}
	return nil
}

func (c *Client) invalidate(ctx context.Context, operation, id string) {
	if c.bus == nil {
		return
	}
	if err := c.bus.PublishSync(ctx, events.NewEmployeesInvalidatedEvent(operation, id)); err != nil {
		c.logger.Warn("employee list refresh failed", "operation", operation, "error", err)
	}
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return internal.NewValidationFieldError("id", "id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
