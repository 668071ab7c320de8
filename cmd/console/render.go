package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/jmespath/go-jmespath"

	"github.com/99minutos/client-console/internal/core/ports"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(14)
)

func printNotice(w io.Writer, n *ports.Notice) {
	if n == nil || n.Message == "" {
		return
	}
	style := successStyle
	if n.Level == ports.NoticeError {
		style = errorStyle
	}
	fmt.Fprintln(w, style.Render(n.Message))
}

func printClients(w io.Writer, view ports.ConsoleView) {
	if len(view.Clients) == 0 {
		placeholder := view.Placeholder
		if placeholder == "" {
			placeholder = "No clients added yet."
		}
		fmt.Fprintln(w, mutedStyle.Render(placeholder))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("USERNAME", "EXPIRY DATE", "PERMISSIONS", "EMAIL", "RESET LOGIN").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, c := range view.Clients {
		t.Row(c.Username, c.ExpiryDate, permissionsText(c.Permissions), c.Email, yesNo(c.LoginStatus))
	}
	fmt.Fprintln(w, t.Render())
}

func printClient(w io.Writer, c ports.ClientSummary) {
	rows := [][2]string{
		{"username", c.Username},
		{"expiry date", c.ExpiryDate},
		{"permissions", permissionsText(c.Permissions)},
		{"email", c.Email},
		{"reset login", yesNo(c.LoginStatus)},
	}
	for _, r := range rows {
		fmt.Fprintln(w, labelStyle.Render(r[0]+":")+r[1])
	}
}

func permissionsText(perms []string) string {
	if len(perms) == 0 {
		return "-"
	}
	return strings.Join(perms, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// clientDoc is the JSON shape printed by --json and searched by --query.
type clientDoc struct {
	Username    string   `json:"username"`
	ExpiryDate  string   `json:"expiry_date"`
	Permissions []string `json:"permissions"`
	Email       string   `json:"email,omitempty"`
	LoginStatus bool     `json:"login_status"`
}

func toDoc(c ports.ClientSummary) clientDoc {
	perms := c.Permissions
	if perms == nil {
		perms = []string{}
	}
	return clientDoc{
		Username:    c.Username,
		ExpiryDate:  c.ExpiryDate,
		Permissions: perms,
		Email:       c.Email,
		LoginStatus: c.LoginStatus,
	}
}

func toDocs(clients []ports.ClientSummary) []clientDoc {
	out := make([]clientDoc, 0, len(clients))
	for _, c := range clients {
		out = append(out, toDoc(c))
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	switch x := v.(type) {
	case []ports.ClientSummary:
		v = toDocs(x)
	case *ports.ClientSummary:
		v = toDoc(*x)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printQuery evaluates a JMESPath expression over the JSON form of clients,
// e.g. "[?contains(permissions, 'dashboard1')].username".
func printQuery(w io.Writer, clients []ports.ClientSummary, expression string) error {
	data, err := json.Marshal(toDocs(clients))
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	result, err := jmespath.Search(expression, doc)
	if err != nil {
		return fmt.Errorf("jmespath: %w", err)
	}
	return printJSON(w, result)
}
