package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/contacts"
	"github.com/stockdesk-app/stockdesk/internal/transactions"
)

type HistoryModel struct {
	CommonModel
	service  *transactions.Service
	contacts *contacts.Service

	table   table.Model
	rows    []api.Transaction
	loading bool
	err     error
	status  string
}

func NewHistoryModel(svc *transactions.Service, contactSvc *contacts.Service) HistoryModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Kind", Width: 10},
		{Title: "Contact", Width: 22},
		{Title: "Items", Width: 6},
		{Title: "Total", Width: 12},
		{Title: "Paid", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return HistoryModel{service: svc, contacts: contactSvc, table: t, loading: true}
}

func (m HistoryModel) Title() string { return "Sales & Purchases" }
func (m HistoryModel) ShortHelp() string {
	return "Esc: back | x: delete | r: refresh"
}

func (m HistoryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadHistoryMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rows = msg.transactions
		m.refreshTable()

		return m, nil

	case historyDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Rejected: %v", msg.err)
		} else {
			m.status = "Deleted."
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "x":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.rows) {
				return m, m.deleteCmd(m.rows[idx].ID)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m HistoryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *HistoryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))

	for _, t := range m.rows {
		name := fmt.Sprintf("#%d", t.ContactID)
		if c, ok := m.contacts.Get(t.ContactID); ok {
			name = c.Name
		}

		rows = append(rows, table.Row{
			FormatDate(t.Date),
			string(t.Kind),
			name,
			fmt.Sprintf("%d", len(t.Items)),
			FormatAmount(t.Total),
			FormatAmount(t.Paid),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadHistoryMsg struct {
	transactions []api.Transaction
	err          error
}

func (m HistoryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		if _, err := m.contacts.List(ctx); err != nil {
			return loadHistoryMsg{err: err}
		}

		items, err := m.service.List(ctx)
		return loadHistoryMsg{transactions: items, err: err}
	}
}

type historyDeletedMsg struct {
	err error
}

func (m HistoryModel) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		return historyDeletedMsg{err: m.service.Delete(ctx, id)}
	}
}
