package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/frahmantamala/hr-portal/internal/employee"
)

type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

func NewTable(w io.Writer, headers []string) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	return &Table{table: table, header: headers}
}

func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

func (t *Table) Render() error {
	t.table.Header(t.header)
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}
	return t.table.Render()
}

var employeeHeaders = []string{"ID", "Name", "Username", "Email", "Role", "Active", "Skills", "Company"}

// PrintEmployees renders one page followed by a "page x of y" footer.
func (p *Printer) PrintEmployees(page employee.Page, filter employee.Filter) error {
	if len(page.Employees) == 0 {
		p.Info("No employees found")
		return nil
	}

	t := NewTable(p.out, employeeHeaders)
	for _, e := range page.Employees {
		active := "no"
		if e.IsActive {
			active = "yes"
		}
		t.AddRow([]string{
			e.ID,
			e.Name,
			e.Username,
			e.Email,
			p.RoleBadge(e.Role),
			active,
			strings.Join(e.Skills, ", "),
			e.Company.Name,
		})
	}
	if err := t.Render(); err != nil {
		return err
	}

	pageNo, limit := filter.Page, filter.Limit
	if pageNo < 1 {
		pageNo = employee.DefaultPage
	}
	fmt.Fprintf(p.out, "\npage %d of %d (%d total)\n", pageNo, page.Pages(limit), page.Total)
	return nil
}
