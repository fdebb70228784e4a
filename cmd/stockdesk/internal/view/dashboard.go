package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/dashboard"
	"github.com/stockdesk-app/stockdesk/internal/draft"
)

type DashboardModel struct {
	CommonModel
	service *dashboard.Service
	drafts  *draft.Store

	summary api.Summary
	loading bool
	err     error
}

func NewDashboardModel(svc *dashboard.Service, drafts *draft.Store) DashboardModel {
	return DashboardModel{service: svc, drafts: drafts, loading: true}
}

func (m DashboardModel) Title() string { return "Dashboard" }
func (m DashboardModel) ShortHelp() string {
	return "Esc: back | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSummaryMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

var (
	tileStyle = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(24)

	tileLabelStyle = lipgloss.NewStyle().Faint(true)
)

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading summary...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tile := func(label, value string) string {
		return tileStyle.Render(tileLabelStyle.Render(label) + "\n" + value)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Sales", FormatAmount(m.summary.SalesTotal)),
		tile("Purchases", FormatAmount(m.summary.PurchasesTotal)),
		tile("Stock value", FormatAmount(m.summary.StockValue)),
	)

	middle := lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Payments in", FormatAmount(m.summary.PaymentsIn)),
		tile("Payments out", FormatAmount(m.summary.PaymentsOut)),
		tile("Open drafts", fmt.Sprintf("%d", m.summary.DraftCount)),
	)

	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Products", fmt.Sprintf("%d", m.summary.ProductCount)),
		tile("Contacts", fmt.Sprintf("%d", m.summary.ContactCount)),
	)

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, top, middle, bottom),
	)
}

type loadSummaryMsg struct {
	summary api.Summary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		summary, err := m.service.Summary(ctx)
		if err != nil {
			return loadSummaryMsg{err: err}
		}

		// Draft count is local state, filled in client-side.
		summary.DraftCount = int64(len(m.drafts.List(draft.KindSale)) + len(m.drafts.List(draft.KindPurchase)))

		return loadSummaryMsg{summary: summary}
	}
}
