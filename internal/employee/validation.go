package employee

import (
	"fmt"
	"regexp"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/common/validation"
	"github.com/frahmantamala/hr-portal/internal/core/user"
)

var zipcodePattern = regexp.MustCompile(`^\d{5,10}$`)

func roleRule(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		s, _ := value.(string)
		if !user.Role(s).Valid() {
			return internal.NewValidationFieldError(field, "Role must be Admin, Editor or Viewer", internal.ErrCodeInvalidRole)
		}
		return nil
	}
}

// rules registers the employee form constraints on a builder, one method per field.
type rules struct {
	v   *validation.ValidationBuilder
	now func() time.Time
}

func (r rules) name(s string) {
	r.v.Field("name", s).Required().Length(3, 50)
}

func (r rules) username(s string) {
	r.v.Field("username", s).Required().Length(3, 20)
}

func (r rules) email(s string) {
	r.v.Field("email", s).Required().Email().MaxLength(100)
}

func (r rules) phone(s string) {
	r.v.Field("phone", s).Optional().MaxLength(20)
}

func (r rules) website(s string) {
	r.v.Field("website", s).Optional().URL().MaxLength(100)
}

func (r rules) role(role user.Role) {
	r.v.Field("role", string(role)).Custom(roleRule("role"))
}

func (r rules) skills(skills []string) {
	for i, skill := range skills {
		r.v.Field(fmt.Sprintf("skills[%d]", i), skill).Length(2, 10)
	}
}

func (r rules) slots(slots []string) {
	for i, slot := range slots {
		r.v.Field(fmt.Sprintf("availableSlots[%d]", i), slot).FutureTimestamp(r.now)
	}
}

func (r rules) address(a Address) {
	r.v.Field("address.street", a.Street).Length(5, 100)
	r.v.Field("address.city", a.City).Length(2, 50)
	r.v.Field("address.zipcode", a.Zipcode).Matches(zipcodePattern, "Zipcode must be 5 to 10 digits", internal.ErrCodeInvalidZipcode)
}

func (r rules) company(c Company) {
	r.v.Field("company.name", c.Name).Length(2, 100)
}

// Validate checks a full employee as the create form does. Slots are compared
// against now() at the moment of the call.
func Validate(e Employee, now func() time.Time) error {
	r := rules{v: validation.NewValidator(), now: now}
	r.name(e.Name)
	r.username(e.Username)
	r.email(e.Email)
	r.phone(e.Phone)
	r.website(e.Website)
	r.role(e.Role)
	r.skills(e.Skills)
	r.slots(e.AvailableSlots)
	r.address(e.Address)
	r.company(e.Company)

	if err := r.v.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidatePatch applies the same rules to the fields a patch sets.
func ValidatePatch(p Patch, now func() time.Time) error {
	if p.Empty() {
		return internal.NewValidationError("Nothing to update", internal.ErrCodeValidationFailed)
	}

	r := rules{v: validation.NewValidator(), now: now}
	if p.Name != nil {
		r.name(*p.Name)
	}
	if p.Username != nil {
		r.username(*p.Username)
	}
	if p.Email != nil {
		r.email(*p.Email)
	}
	if p.Phone != nil {
		r.phone(*p.Phone)
	}
	if p.Website != nil {
		r.website(*p.Website)
	}
	if p.Role != nil {
		r.role(*p.Role)
	}
	if p.Skills != nil {
		r.skills(*p.Skills)
	}
	if p.AvailableSlots != nil {
		r.slots(*p.AvailableSlots)
	}
	if p.Address != nil {
		r.address(*p.Address)
	}
	if p.Company != nil {
		r.company(*p.Company)
	}

	if err := r.v.Validate(); err != nil {
		return err
	}
	return nil
}
