package employee_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/employee"
	"github.com/frahmantamala/hr-portal/internal/gateway"
	"github.com/frahmantamala/hr-portal/internal/session"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

func TestEmployee(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Client Suite")
}

// recordingGateway replies with a fixed body per method and remembers every request.
type recordingGateway struct {
	mu       sync.Mutex
	requests []gateway.Request
	replies  map[string]interface{}
	err      error
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{replies: map[string]interface{}{}}
}

func (g *recordingGateway) DoJSON(_ context.Context, req gateway.Request, out interface{}) (*gateway.Response, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	reply := g.replies[req.Method]
	err := g.err
	g.mu.Unlock()

	if err != nil {
		return nil, err
	}
	raw, _ := json.Marshal(reply)
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, err
		}
	}
	return &gateway.Response{StatusCode: http.StatusOK, Body: raw}, nil
}

func (g *recordingGateway) count(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, r := range g.requests {
		if r.Method == method {
			n++
		}
	}
	return n
}

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func validEmployee() employee.Employee {
	return employee.Employee{
		Name:           "Jane Doe",
		Username:       "jane",
		Email:          "jane@example.com",
		Phone:          "+62-812-000",
		Website:        "https://jane.dev",
		Role:           user.RoleEditor,
		IsActive:       true,
		Skills:         []string{"go", "sql"},
		AvailableSlots: []string{fixedNow.Add(24 * time.Hour).Format(time.RFC3339)},
		Address:        employee.Address{Street: "Jl. Sudirman 1", City: "Jakarta", Zipcode: "10220"},
		Company:        employee.Company{Name: "Acme"},
	}
}

func fieldsOf(err error) []string {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue())
	var fields []string
	for _, fe := range appErr.FieldErrors() {
		fields = append(fields, fe.Field)
	}
	return fields
}

var _ = Describe("Validate", func() {
	It("should accept a complete employee", func() {
		Expect(employee.Validate(validEmployee(), clock)).To(Succeed())
	})

	It("should accept an empty website and phone", func() {
		e := validEmployee()
		e.Website = ""
		e.Phone = ""
		Expect(employee.Validate(e, clock)).To(Succeed())
	})

	DescribeTable("field rules",
		func(mutate func(*employee.Employee), field string) {
			e := validEmployee()
			mutate(&e)
			err := employee.Validate(e, clock)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(fieldsOf(err)).To(ContainElement(field))
		},
		Entry("short name", func(e *employee.Employee) { e.Name = "Jo" }, "name"),
		Entry("long username", func(e *employee.Employee) { e.Username = "a-very-long-username-x" }, "username"),
		Entry("bad email", func(e *employee.Employee) { e.Email = "jane@" }, "email"),
		Entry("long phone", func(e *employee.Employee) { e.Phone = "123456789012345678901" }, "phone"),
		Entry("relative website", func(e *employee.Employee) { e.Website = "jane.dev" }, "website"),
		Entry("unknown role", func(e *employee.Employee) { e.Role = "Owner" }, "role"),
		Entry("short skill", func(e *employee.Employee) { e.Skills = []string{"go", "c"} }, "skills[1]"),
		Entry("long skill", func(e *employee.Employee) { e.Skills = []string{"kubernetes-ops"} }, "skills[0]"),
		Entry("past slot", func(e *employee.Employee) {
			e.AvailableSlots = []string{fixedNow.Add(-time.Hour).Format(time.RFC3339)}
		}, "availableSlots[0]"),
		Entry("slot equal to now", func(e *employee.Employee) {
			e.AvailableSlots = []string{fixedNow.Format(time.RFC3339)}
		}, "availableSlots[0]"),
		Entry("unparseable slot", func(e *employee.Employee) { e.AvailableSlots = []string{"next tuesday"} }, "availableSlots[0]"),
		Entry("short street", func(e *employee.Employee) { e.Address.Street = "Jl 1" }, "address.street"),
		Entry("short city", func(e *employee.Employee) { e.Address.City = "J" }, "address.city"),
		Entry("letters in zipcode", func(e *employee.Employee) { e.Address.Zipcode = "12ab5" }, "address.zipcode"),
		Entry("short zipcode", func(e *employee.Employee) { e.Address.Zipcode = "1234" }, "address.zipcode"),
		Entry("short company", func(e *employee.Employee) { e.Company.Name = "A" }, "company.name"),
	)

	It("should report every failing field at once", func() {
		e := validEmployee()
		e.Name = ""
		e.Address.Zipcode = "x"
		Expect(fieldsOf(employee.Validate(e, clock))).To(ContainElements("name", "address.zipcode"))
	})
})

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		gw     *recordingGateway
		bus    *events.EventBus
		store  *session.Store
		client *employee.Client
	)

	login := func(role user.Role) {
		Expect(store.Set(ctx, user.User{ID: "u-1", Username: "me", Role: role}, "tok")).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		gw = newRecordingGateway()
		bus = events.NewEventBus(logger.Discard())
		store = session.NewStore(session.WithLogger(logger.Discard()))
		client = employee.NewClient(gw, logger.Discard(),
			employee.WithClock(clock),
			employee.WithEventBus(bus),
			employee.WithPermissions(auth.NewPermissionChecker(), store),
		)
		login(user.RoleAdmin)
	})

	Describe("List", func() {
		It("should send the default page and limit", func() {
			gw.replies[http.MethodGet] = map[string]interface{}{"employees": []employee.Employee{validEmployee()}, "total": 11}

			page, err := client.List(ctx, employee.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(11))
			Expect(page.Pages(10)).To(Equal(2))

			q := gw.requests[0].Query
			Expect(q.Get("page")).To(Equal("1"))
			Expect(q.Get("limit")).To(Equal("10"))
			Expect(q.Has("search")).To(BeFalse())
			Expect(q.Has("role")).To(BeFalse())
		})

		It("should pass search and role through", func() {
			_, err := client.List(ctx, employee.Filter{Page: 3, Limit: 5, Search: "jane", Role: user.RoleViewer})
			Expect(err).NotTo(HaveOccurred())

			q := gw.requests[0].Query
			Expect(q.Get("page")).To(Equal("3"))
			Expect(q.Get("search")).To(Equal("jane"))
			Expect(q.Get("role")).To(Equal("Viewer"))
		})

		It("should reject an unknown role filter", func() {
			_, err := client.List(ctx, employee.Filter{Role: "Owner"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(gw.requests).To(BeEmpty())
		})
	})

	Describe("Create", func() {
		It("should reject a past slot before any network call", func() {
			e := validEmployee()
			e.AvailableSlots = []string{fixedNow.Add(-24 * time.Hour).Format(time.RFC3339)}

			_, err := client.Create(ctx, e)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(gw.requests).To(BeEmpty())
		})

		It("should post the employee and return the stored copy", func() {
			stored := validEmployee()
			stored.ID = "e-1"
			gw.replies[http.MethodPost] = stored

			created, err := client.Create(ctx, validEmployee())
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(Equal("e-1"))
			Expect(gw.requests[0].Path).To(Equal("/employees"))
		})

		It("should surface duplicates as conflicts", func() {
			gw.err = internal.NewConflictError("Username already exists", internal.ErrCodeDuplicate)

			_, err := client.Create(ctx, validEmployee())
			Expect(internal.IsType(err, internal.ErrorTypeConflict)).To(BeTrue())
		})

		It("should refuse a viewer without calling the backend", func() {
			login(user.RoleViewer)

			_, err := client.Create(ctx, validEmployee())
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
			Expect(gw.requests).To(BeEmpty())
		})

		It("should refuse when logged out", func() {
			store.Clear(ctx)

			_, err := client.Create(ctx, validEmployee())
			Expect(err).To(MatchError(internal.ErrNotLoggedIn))
		})
	})

	Describe("Update", func() {
		It("should send only the fields that are set", func() {
			name := "Janet Doe"
			_, err := client.Update(ctx, "e-1", employee.Patch{Name: &name})
			Expect(err).NotTo(HaveOccurred())

			req := gw.requests[0]
			Expect(req.Method).To(Equal(http.MethodPut))
			Expect(req.Path).To(Equal("/employees/e-1"))
			raw, _ := json.Marshal(req.Body)
			Expect(string(raw)).To(Equal(`{"name":"Janet Doe"}`))
		})

		It("should validate set fields with the create rules", func() {
			slots := []string{fixedNow.Add(-time.Minute).Format(time.RFC3339)}
			_, err := client.Update(ctx, "e-1", employee.Patch{AvailableSlots: &slots})
			Expect(fieldsOf(err)).To(ContainElement("availableSlots[0]"))
			Expect(gw.requests).To(BeEmpty())
		})

		It("should reject an empty patch", func() {
			_, err := client.Update(ctx, "e-1", employee.Patch{})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("should require an id", func() {
			name := "Janet Doe"
			_, err := client.Update(ctx, " ", employee.Patch{Name: &name})
			Expect(fieldsOf(err)).To(ContainElement("id"))
		})
	})

	Describe("Delete", func() {
		It("should return the backend message", func() {
			gw.replies[http.MethodDelete] = map[string]string{"message": "Employee deleted"}

			res, err := client.Delete(ctx, "e-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Message).To(Equal("Employee deleted"))
		})

		It("should be reserved for admins", func() {
			login(user.RoleEditor)

			_, err := client.Delete(ctx, "e-1")
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
			Expect(gw.requests).To(BeEmpty())
		})
	})

	Describe("Browser", func() {
		var browser *employee.Browser

		BeforeEach(func() {
			gw.replies[http.MethodGet] = map[string]interface{}{"employees": []employee.Employee{}, "total": 0}
			browser = employee.NewBrowser(client, bus, employee.Filter{Limit: 20})
			_, err := browser.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			browser.Close()
		})

		It("should reload the current page after a mutation", func() {
			gw.replies[http.MethodDelete] = map[string]string{"message": "ok"}
			gw.replies[http.MethodGet] = map[string]interface{}{"employees": []employee.Employee{validEmployee()}, "total": 1}

			_, err := client.Delete(ctx, "e-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(gw.count(http.MethodGet)).To(Equal(2))
			_, page := browser.Current()
			Expect(page.Total).To(Equal(1))
		})

		It("should keep its filter when paging", func() {
			_, err := browser.GoToPage(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			filter, _ := browser.Current()
			Expect(filter.Page).To(Equal(2))
			Expect(filter.Limit).To(Equal(20))
		})

		It("should go back to the first page on a new filter", func() {
			_, _ = browser.GoToPage(ctx, 3)
			_, err := browser.SetFilter(ctx, employee.Filter{Search: "jane"})
			Expect(err).NotTo(HaveOccurred())

			filter, _ := browser.Current()
			Expect(filter.Page).To(Equal(1))
			Expect(filter.Limit).To(Equal(10))
		})

		It("should stop reloading once closed", func() {
			browser.Close()
			gw.replies[http.MethodDelete] = map[string]string{"message": "ok"}

			_, err := client.Delete(ctx, "e-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(gw.count(http.MethodGet)).To(Equal(1))
		})
	})
})
