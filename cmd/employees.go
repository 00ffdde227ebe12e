package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/employee"
)

var (
	listPage    int
	listLimit   int
	listSearch  string
	listRole    string
	payloadFile string
)

var employeesCmd = &cobra.Command{
	Use:     "employees",
	Aliases: []string{"emp"},
	Short:   "List and manage employee records",
}

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show one page of employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := parseRoleFlag(listRole)
		if err != nil {
			return err
		}
		filter := employee.Filter{
			Page:   listPage,
			Limit:  listLimit,
			Search: listSearch,
			Role:   role,
		}

		return withDeps(cmd.Context(), func(d *Dependencies) error {
			browser := employee.NewBrowser(d.Employees, d.Bus, filter)
			defer browser.Close()

			page, err := browser.Load(cmd.Context())
			if err != nil {
				return err
			}
			current, _ := browser.Current()
			return d.Printer.PrintEmployees(page, current)
		})
	},
}

// parseRoleFlag accepts an empty value as "any role".
func parseRoleFlag(value string) (user.Role, error) {
	if value == "" {
		return "", nil
	}
	role, err := user.ParseRole(value)
	if err != nil {
		return "", internal.NewBadRequestError(fmt.Sprintf("--role: %v", err))
	}
	return role, nil
}

var employeesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an employee from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var e employee.Employee
		if err := readPayload(payloadFile, &e); err != nil {
			return err
		}

		return withDeps(cmd.Context(), func(d *Dependencies) error {
			created, err := d.Employees.Create(cmd.Context(), e)
			if err != nil {
				return err
			}
			d.Printer.Success("Created %s (%s)", created.Name, created.ID)
			return nil
		})
	},
}

var employeesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Apply a partial update from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p employee.Patch
		if err := readPayload(payloadFile, &p); err != nil {
			return err
		}

		return withDeps(cmd.Context(), func(d *Dependencies) error {
			updated, err := d.Employees.Update(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			d.Printer.Success("Updated %s (%s)", updated.Name, updated.ID)
			return nil
		})
	},
}

var employeesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(d *Dependencies) error {
			res, err := d.Employees.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d.Printer.Success("%s", res.Message)
			return nil
		})
	},
}

func readPayload(path string, dst interface{}) error {
	if path == "" {
		return internal.NewBadRequestError("--file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return internal.NewBadRequestError(fmt.Sprintf("cannot read %s: %v", path, err))
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return internal.NewBadRequestError(fmt.Sprintf("%s is not valid JSON: %v", path, err))
	}
	return nil
}

func init() {
	employeesListCmd.Flags().IntVar(&listPage, "page", employee.DefaultPage, "1-based page number")
	employeesListCmd.Flags().IntVar(&listLimit, "limit", employee.DefaultLimit, "rows per page")
	employeesListCmd.Flags().StringVar(&listSearch, "search", "", "match name, username or email")
	employeesListCmd.Flags().StringVar(&listRole, "role", "", "Admin, Editor or Viewer")

	for _, c := range []*cobra.Command{employeesCreateCmd, employeesUpdateCmd} {
		c.Flags().StringVarP(&payloadFile, "file", "f", "", "JSON payload")
		_ = c.MarkFlagRequired("file")
	}

	employeesCmd.AddCommand(employeesListCmd)
	employeesCmd.AddCommand(employeesCreateCmd)
	employeesCmd.AddCommand(employeesUpdateCmd)
	employeesCmd.AddCommand(employeesDeleteCmd)
}
