package employee

import (
	"net/url"
	"strconv"

	"github.com/frahmantamala/hr-portal/internal/core/common/validation"
	"github.com/frahmantamala/hr-portal/internal/core/user"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Filter selects one page of the employee list. Page is 1-based.
type Filter struct {
	Page   int
	Limit  int
	Search string
	Role   user.Role
}

func (f Filter) withDefaults() Filter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	return f
}

func (f Filter) Validate() error {
	v := validation.NewValidator()
	v.Field("role", string(f.Role)).Optional().Custom(roleRule("role"))

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Query encodes the filter; empty search and role are omitted.
func (f Filter) Query() url.Values {
	f = f.withDefaults()
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Role != "" {
		q.Set("role", string(f.Role))
	}
	return q
}

type Page struct {
	Employees []Employee `json:"employees"`
	Total     int        `json:"total"`
}

// Pages returns how many pages of limit rows the total spans.
func (p Page) Pages(limit int) int {
	if limit < 1 {
		limit = DefaultLimit
	}
	return (p.Total + limit - 1) / limit
}

type DeleteResult struct {
	Message string `json:"message"`
}
