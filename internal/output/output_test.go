package output_test

import (
	"bytes"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/employee"
	"github.com/frahmantamala/hr-portal/internal/output"
)

func TestOutput(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Output Suite")
}

var _ = Describe("Printer", func() {
	var (
		stdout, stderr *bytes.Buffer
		p              *output.Printer
	)

	BeforeEach(func() {
		stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
		p = output.NewPrinterWithWriters(stdout, stderr, false)
	})

	DescribeTable("ParseColorMode",
		func(in string, want output.ColorMode, ok bool) {
			got, err := output.ParseColorMode(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("auto", "auto", output.ColorAuto, true),
		Entry("empty", "", output.ColorAuto, true),
		Entry("always", "always", output.ColorAlways, true),
		Entry("never", "never", output.ColorNever, true),
		Entry("bogus", "rainbow", output.ColorAuto, false),
	)

	It("should tag plain messages without colors", func() {
		p.Success("logged in as %s", "admin")
		p.Error("boom")
		Expect(stdout.String()).To(Equal("[OK] logged in as admin\n"))
		Expect(stderr.String()).To(Equal("[ERROR] boom\n"))
	})

	It("should render an employee page with a footer", func() {
		page := employee.Page{
			Total: 11,
			Employees: []employee.Employee{{
				ID: "e-1", Name: "Jane Doe", Username: "jdoe", Email: "jane@example.com",
				Role: user.RoleEditor, IsActive: true, Skills: []string{"go", "sql"},
				Company: employee.Company{Name: "Acme"},
			}},
		}

		Expect(p.PrintEmployees(page, employee.Filter{Page: 2, Limit: 10})).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("jdoe"))
		Expect(stdout.String()).To(ContainSubstring("go, sql"))
		Expect(stdout.String()).To(ContainSubstring("page 2 of 2 (11 total)"))
	})

	It("should say so when the page is empty", func() {
		Expect(p.PrintEmployees(employee.Page{}, employee.Filter{})).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("No employees found"))
	})

	It("should list every field message of a validation error", func() {
		err := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
				{Field: "name", Message: "name is required"},
				{Field: "email", Message: "email must be a valid email address"},
			}})

		p.FormatError(err)
		Expect(stderr.String()).To(ContainSubstring("name: name is required"))
		Expect(stderr.String()).To(ContainSubstring("email: email must be a valid email address"))
	})

	It("should suggest logging in again when the session expired", func() {
		p.FormatError(internal.ErrSessionExpired)
		Expect(stderr.String()).To(ContainSubstring("hrportal login"))
	})
})

var _ = Describe("ExitCode", func() {
	DescribeTable("maps errors to exit statuses",
		func(err error, want int) {
			Expect(output.ExitCode(err)).To(Equal(want))
		},
		Entry("nil", nil, output.ExitSuccess),
		Entry("plain", errors.New("x"), output.ExitGeneral),
		Entry("validation", internal.NewValidationError("bad", internal.ErrCodeValidationFailed), output.ExitUsageError),
		Entry("session expired", internal.ErrSessionExpired, output.ExitAuthError),
		Entry("forbidden", internal.ErrRoleNotAllowed, output.ExitAuthError),
		Entry("network", internal.NewNetworkError(errors.New("refused")), output.ExitNetwork),
		Entry("conflict", internal.NewConflictError("dup", internal.ErrCodeDuplicate), output.ExitGeneral),
	)
})
