package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/catalog"
	"github.com/stockdesk-app/stockdesk/internal/inventory"
)

type stockState int

const (
	stockStateBrowse stockState = iota
	stockStateAdjust
)

type StockModel struct {
	CommonModel
	catalog   *catalog.Service
	inventory *inventory.Service

	state   stockState
	table   table.Model
	rows    []api.Product
	form    *huh.Form
	loading bool
	err     error
	status  string

	formDelta  string
	formReason string
}

func NewStockModel(catalogSvc *catalog.Service, inventorySvc *inventory.Service) StockModel {
	columns := []table.Column{
		{Title: "SKU", Width: 10},
		{Title: "Product", Width: 30},
		{Title: "Stock", Width: 8},
		{Title: "Price", Width: 12},
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

	return StockModel{catalog: catalogSvc, inventory: inventorySvc, table: t, loading: true}
}

func (m StockModel) Title() string { return "Stock" }
func (m StockModel) ShortHelp() string {
	if m.state == stockStateAdjust {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | a: adjust | r: refresh"
}

func (m StockModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m StockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadStockMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rows = msg.products
		m.refreshTable()

		return m, nil

	case stockAdjustedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Rejected: %v", msg.err)
		} else {
			m.status = "Adjusted."
		}

		m.state = stockStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case stockStateBrowse:
		return m.updateBrowse(msg)
	case stockStateAdjust:
		return m.updateAdjust(msg)
	}

	return m, nil
}

func (m StockModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.rows) {
				return m.enterAdjust()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m StockModel) enterAdjust() (tea.Model, tea.Cmd) {
	m.formDelta = ""
	m.formReason = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("delta").
				Title("Adjustment").
				Description("Positive adds stock, negative removes").
				Value(&m.formDelta).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil {
						return fmt.Errorf("not a number: %q", s)
					}
					if n == 0 {
						return fmt.Errorf("adjustment cannot be zero")
					}
					return nil
				}),

			huh.NewInput().
				Key("reason").
				Title("Reason").
				Placeholder("recount, damage, delivery...").
				Value(&m.formReason).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("reason is required")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = stockStateAdjust
	m.table.Blur()
	return m, m.form.Init()
}

func (m StockModel) updateAdjust(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = stockStateBrowse
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

	return m, m.adjustCmd()
}

func (m StockModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading products...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.state == stockStateAdjust && m.form != nil {
		idx := m.table.Cursor()
		name := ""
		if idx >= 0 && idx < len(m.rows) {
			name = m.rows[idx].Name
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Adjust Stock\n\n%s\n\n%s", name, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *StockModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))

	for _, p := range m.rows {
		rows = append(rows, table.Row{
			p.SKU,
			p.Name,
			fmt.Sprintf("%d", p.Stock),
			FormatAmount(p.Price),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadStockMsg struct {
	products []api.Product
	err      error
}

func (m StockModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		products, err := m.catalog.Products(ctx)
		return loadStockMsg{products: products, err: err}
	}
}

type stockAdjustedMsg struct {
	err error
}

func (m StockModel) adjustCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}

	productID := m.rows[idx].ID
	delta, _ := strconv.ParseInt(strings.TrimSpace(m.formDelta), 10, 64)
	reason := strings.TrimSpace(m.formReason)

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		_, err := m.inventory.Adjust(ctx, api.InventoryLogParams{
			ProductID: productID,
			Delta:     delta,
			Reason:    reason,
		})

		return stockAdjustedMsg{err: err}
	}
}
