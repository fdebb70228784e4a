package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/contacts"
	"github.com/stockdesk-app/stockdesk/internal/payments"
)

type paymentsState int

const (
	paymentsStateBrowse paymentsState = iota
	paymentsStateForm
)

type PaymentsModel struct {
	CommonModel
	service  *payments.Service
	contacts *contacts.Service

	state    paymentsState
	table    table.Model
	rows     []api.Payment
	form     *huh.Form
	editID   int64 // 0 while creating
	loading  bool
	err      error
	status   string

	// Form bindings
	formType    string
	formAmount  string
	formMethod  string
	formContact string
	formNotes   string
}

func NewPaymentsModel(svc *payments.Service, contactSvc *contacts.Service) PaymentsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 6},
		{Title: "Amount", Width: 12},
		{Title: "Method", Width: 14},
		{Title: "Contact", Width: 22},
		{Title: "Notes", Width: 28},
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

	return PaymentsModel{service: svc, contacts: contactSvc, table: t, loading: true}
}

func (m PaymentsModel) Title() string { return "Payments" }
func (m PaymentsModel) ShortHelp() string {
	if m.state == paymentsStateForm {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | n: new | e: edit | x: delete | r: refresh"
}

func (m PaymentsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PaymentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPaymentsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rows = msg.payments
		m.refreshTable()

		return m, nil

	case paymentSavedMsg:
		if msg.err != nil {
			// The cache already rolled back; surface the rejection and
			// show the restored rows.
			m.status = fmt.Sprintf("Rejected: %v", msg.err)
		} else {
			m.status = "Saved."
		}

		m.state = paymentsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case paymentsStateBrowse:
		return m.updateBrowse(msg)
	case paymentsStateForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m PaymentsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.enterForm(nil)
		case "e":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.rows) {
				return m.enterForm(&m.rows[idx])
			}
			return m, nil
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

func (m PaymentsModel) enterForm(p *api.Payment) (tea.Model, tea.Cmd) {
	if p == nil {
		m.editID = 0
		m.formType = string(api.PaymentIn)
		m.formAmount = ""
		m.formMethod = "cash"
		m.formContact = ""
		m.formNotes = ""
	} else {
		m.editID = p.ID
		m.formType = string(p.Type)
		m.formAmount = FormatAmount(p.Amount)
		m.formMethod = p.Method
		m.formContact = fmt.Sprintf("%d", p.ContactID)
		m.formNotes = p.Notes
	}

	contactOptions := []huh.Option[string]{}

	ctx, cancel := ApiCtx()
	defer cancel()

	if all, err := m.contacts.List(ctx); err == nil {
		for _, c := range all {
			contactOptions = append(contactOptions,
				huh.NewOption(c.Name, fmt.Sprintf("%d", c.ID)))
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("type").
				Title("Direction").
				Options(
					huh.NewOption("Received", string(api.PaymentIn)),
					huh.NewOption("Sent", string(api.PaymentOut)),
				).
				Value(&m.formType),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.formAmount).
				Validate(func(s string) error {
					_, err := ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("method").
				Title("Method").
				Placeholder("cash, bank transfer...").
				Value(&m.formMethod),

			huh.NewSelect[string]().
				Key("contact").
				Title("Contact").
				Options(contactOptions...).
				Value(&m.formContact),

			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.formNotes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = paymentsStateForm
	m.table.Blur()
	return m, m.form.Init()
}

func (m PaymentsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = paymentsStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m PaymentsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading payments...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.state == paymentsStateForm && m.form != nil {
		title := "New Payment"
		if m.editID != 0 {
			title = "Edit Payment"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("%s\n\n%s", title, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *PaymentsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))

	for _, p := range m.rows {
		name := fmt.Sprintf("#%d", p.ContactID)
		if c, ok := m.contacts.Get(p.ContactID); ok {
			name = c.Name
		}

		rows = append(rows, table.Row{
			FormatDate(p.Date),
			string(p.Type),
			FormatAmount(p.Amount),
			p.Method,
			name,
			p.Notes,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadPaymentsMsg struct {
	payments []api.Payment
	err      error
}

func (m PaymentsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		// Contacts are fetched first so the table can show names.
		if _, err := m.contacts.List(ctx); err != nil {
			return loadPaymentsMsg{err: err}
		}

		items, err := m.service.List(ctx)
		return loadPaymentsMsg{payments: items, err: err}
	}
}

type paymentSavedMsg struct {
	err error
}

func (m PaymentsModel) saveCmd() tea.Cmd {
	amount, err := ParseAmount(m.formAmount)
	if err != nil {
		return func() tea.Msg { return paymentSavedMsg{err: err} }
	}

	var contactID int64
	fmt.Sscanf(m.formContact, "%d", &contactID)

	editID := m.editID
	ptype := api.PaymentType(m.formType)
	method := strings.TrimSpace(m.formMethod)
	notes := m.formNotes

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		if editID != 0 {
			_, err := m.service.Update(ctx, editID, api.PaymentPatch{
				Amount: &amount,
				Method: &method,
				Notes:  &notes,
			})

			return paymentSavedMsg{err: err}
		}

		_, err := m.service.Create(ctx, api.PaymentParams{
			Type:      ptype,
			Amount:    amount,
			Method:    method,
			ContactID: contactID,
			Date:      time.Now(),
			Notes:     notes,
		})

		return paymentSavedMsg{err: err}
	}
}

func (m PaymentsModel) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		return paymentSavedMsg{err: m.service.Delete(ctx, id)}
	}
}
