// Command stockdesk is the terminal dashboard for a small-business inventory
// and sales backend. Remote data is cached in memory and mutated
// optimistically; in-progress sales and purchases live as local drafts in a
// SQLite database, auto-saved a few seconds after the last edit.
package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/stockdesk-app/stockdesk/cmd/stockdesk/internal/view"
	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/catalog"
	"github.com/stockdesk-app/stockdesk/internal/config"
	"github.com/stockdesk-app/stockdesk/internal/contacts"
	"github.com/stockdesk-app/stockdesk/internal/dashboard"
	"github.com/stockdesk-app/stockdesk/internal/database"
	"github.com/stockdesk-app/stockdesk/internal/draft"
	draftStore "github.com/stockdesk-app/stockdesk/internal/draft/store"
	"github.com/stockdesk-app/stockdesk/internal/inventory"
	"github.com/stockdesk-app/stockdesk/internal/payments"
	"github.com/stockdesk-app/stockdesk/internal/transactions"
)

type model struct {
	currentView View

	dashboardView view.DashboardModel
	paymentsView  view.PaymentsModel
	historyView   view.HistoryModel
	editorView    view.EditorModel
	stockView     view.StockModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewPayments  View = 2
	ViewHistory   View = 3
	ViewEditor    View = 4
	ViewStock     View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		slog.Error("failed to resolve database path", "error", err)
		os.Exit(1)
	}

	db, err := database.New(dbPath)
	if err != nil {
		slog.Error("failed to open draft database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	drafts, err := draft.NewStore(ctx, draftStore.New(db))
	if err != nil {
		slog.Error("failed to load drafts", "error", err)
		os.Exit(1)
	}

	if err := drafts.ClearOld(ctx, cfg.DraftMaxAge()); err != nil {
		slog.Error("failed to evict expired drafts", "error", err)
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

	if _, err := client.Login(ctx, cfg.API.Username, cfg.API.Password); err != nil {
		slog.Error("failed to log in", "base_url", cfg.API.BaseURL, "error", err)
		os.Exit(1)
	}

	var (
		dashboardSvc = dashboard.NewService(client)
		contactsSvc  = contacts.NewService(client, dashboardSvc.View())
		catalogSvc   = catalog.NewService(client)
		paymentsSvc  = payments.NewService(client, dashboardSvc.View(), contactsSvc.View())
		inventorySvc = inventory.NewService(client, catalogSvc.ProductsView(), dashboardSvc.View())
		txSvc        = transactions.NewService(client, drafts,
			dashboardSvc.View(), contactsSvc.View(), catalogSvc.ProductsView())
	)

	return model{
		currentView:   ViewMenu,
		dashboardView: view.NewDashboardModel(dashboardSvc, drafts),
		paymentsView:  view.NewPaymentsModel(paymentsSvc, contactsSvc),
		historyView:   view.NewHistoryModel(txSvc, contactsSvc),
		editorView:    view.NewEditorModel(drafts, txSvc, contactsSvc, catalogSvc, cfg.Drafts.AutosaveWindow),
		stockView:     view.NewStockModel(catalogSvc, inventorySvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewPayments
				return m, m.paymentsView.Init()
			case "3":
				m.currentView = ViewHistory
				return m, m.historyView.Init()
			case "4":
				m.currentView = ViewEditor
				return m, m.editorView.Init()
			case "5":
				m.currentView = ViewStock
				return m, m.stockView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewPayments:
		var newModel tea.Model
		newModel, cmd = m.paymentsView.Update(msg)
		m.paymentsView = newModel.(view.PaymentsModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	case ViewEditor:
		var newModel tea.Model
		newModel, cmd = m.editorView.Update(msg)
		m.editorView = newModel.(view.EditorModel)
	case ViewStock:
		var newModel tea.Model
		newModel, cmd = m.stockView.Update(msg)
		m.stockView = newModel.(view.StockModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Stockdesk\n\n" +
				"1. Dashboard\n" +
				"2. Payments\n" +
				"3. Sales & Purchases\n" +
				"4. Sale / Purchase Drafts\n" +
				"5. Stock\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewPayments:
		return m.paymentsView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewEditor:
		return m.editorView.View()
	case ViewStock:
		return m.stockView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
