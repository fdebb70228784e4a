package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/autosave"
	"github.com/stockdesk-app/stockdesk/internal/catalog"
	"github.com/stockdesk-app/stockdesk/internal/contacts"
	"github.com/stockdesk-app/stockdesk/internal/draft"
	"github.com/stockdesk-app/stockdesk/internal/transactions"
)

type editorState int

const (
	editorStatePick editorState = iota
	editorStateOverview
	editorStateItemForm
	editorStateContactForm
	editorStateDetailsForm
)

// EditorModel builds up a sale or purchase as a local draft. Edits are
// written to disk by the auto-save coordinator a few seconds after the last
// keystroke, so a crash or quit never loses more than the save window.
type EditorModel struct {
	CommonModel
	drafts   *draft.Store
	txs      *transactions.Service
	contacts *contacts.Service
	catalog  *catalog.Service
	saver    *autosave.Coordinator

	state   editorState
	kind    draft.Kind
	window  time.Duration
	list    []draft.Draft
	cursor  int
	payload draft.Payload
	form    *huh.Form
	status  string

	// Form bindings
	formProduct  string
	formQty      string
	formPrice    string
	formContact  string
	formDiscount string
	formTax      string
	formPaid     string
	formMethod   string
	formNotes    string
}

func NewEditorModel(
	drafts *draft.Store,
	txs *transactions.Service,
	contactSvc *contacts.Service,
	catalogSvc *catalog.Service,
	window time.Duration,
) EditorModel {
	m := EditorModel{
		drafts:   drafts,
		txs:      txs,
		contacts: contactSvc,
		catalog:  catalogSvc,
		kind:     draft.KindSale,
		window:   window,
	}
	m.saver = autosave.New(drafts, m.kind, window, logAutosaveError)

	return m
}

// Auto-saves are silent on success; a failed background write still has to
// leave a trace somewhere.
func logAutosaveError(err error) {
	slog.Error("failed to auto-save draft", "error", err)
}

func (m EditorModel) Title() string { return "New Sale / Purchase" }
func (m EditorModel) ShortHelp() string {
	switch m.state {
	case editorStatePick:
		return "Esc: back | n: new | enter: resume | x: delete | t: sale/purchase"
	case editorStateOverview:
		return "Esc: close | a: add item | c: contact | d: details | s: submit"
	default:
		return "Navigate form | Esc: cancel"
	}
}

func (m EditorModel) Init() tea.Cmd {
	return m.reloadList()
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case editorListMsg:
		m.list = msg.drafts
		if m.cursor >= len(m.list) {
			m.cursor = 0
		}

		return m, nil

	case editorSubmitMsg:
		if msg.err != nil {
			// Rejected: the draft is still on disk, nothing recorded.
			m.status = fmt.Sprintf("Rejected: %v", msg.err)
			return m, nil
		}

		m.saver.Cancel()
		m.status = fmt.Sprintf("Recorded, total %s.", FormatAmount(msg.total))
		m.state = editorStatePick

		return m, m.reloadList()
	}

	switch m.state {
	case editorStatePick:
		return m.updatePick(msg)
	case editorStateOverview:
		return m.updateOverview(msg)
	default:
		return m.updateSubForm(msg)
	}
}

func (m EditorModel) updatePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.list)-1 {
			m.cursor++
		}
	case "t":
		if m.kind == draft.KindSale {
			m.kind = draft.KindPurchase
		} else {
			m.kind = draft.KindSale
		}

		m.saver.Cancel()
		m.saver = autosave.New(m.drafts, m.kind, m.window, logAutosaveError)

		return m, m.reloadList()
	case "n":
		m.payload = draft.Payload{Date: time.Now()}
		m.saver.Attach("")
		m.state = editorStateOverview
		m.status = ""
	case "enter":
		if m.cursor >= 0 && m.cursor < len(m.list) {
			d := m.list[m.cursor]
			m.payload = d.Payload
			m.saver.Attach(d.ID)
			m.state = editorStateOverview
			m.status = ""
		}
	case "x":
		if m.cursor >= 0 && m.cursor < len(m.list) {
			id := m.list[m.cursor].ID
			return m, func() tea.Msg {
				ctx, cancel := ApiCtx()
				defer cancel()

				// Benign even if the draft is already gone.
				_ = m.drafts.Delete(ctx, id)

				return editorListMsg{drafts: m.drafts.List(m.kind)}
			}
		}
	}

	return m, nil
}

func (m EditorModel) updateOverview(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		// Leaving the editor persists whatever is pending right away.
		ctx, cancel := ApiCtx()
		defer cancel()

		if err := m.saver.Flush(ctx); err != nil {
			m.status = fmt.Sprintf("Draft not saved: %v", err)
			return m, nil
		}

		m.state = editorStatePick

		return m, m.reloadList()
	case "a":
		return m.enterItemForm()
	case "c":
		return m.enterContactForm()
	case "d":
		return m.enterDetailsForm()
	case "s":
		return m, m.submitCmd()
	}

	return m, nil
}

func (m EditorModel) enterItemForm() (tea.Model, tea.Cmd) {
	m.formProduct = ""
	m.formQty = "1"
	m.formPrice = ""

	options := []huh.Option[string]{}

	ctx, cancel := ApiCtx()
	defer cancel()

	if products, err := m.catalog.Products(ctx); err == nil {
		for _, p := range products {
			label := fmt.Sprintf("%s (%s, stock %d)", p.Name, p.SKU, p.Stock)
			options = append(options, huh.NewOption(label, fmt.Sprintf("%d", p.ID)))
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("product").
				Title("Product").
				Options(options...).
				Value(&m.formProduct),

			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Value(&m.formQty).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil || n <= 0 {
						return fmt.Errorf("quantity must be a positive number")
					}
					return nil
				}),

			huh.NewInput().
				Key("price").
				Title("Unit price").
				Description("Leave empty to use the catalog price").
				Value(&m.formPrice),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = editorStateItemForm

	return m, m.form.Init()
}

func (m EditorModel) enterContactForm() (tea.Model, tea.Cmd) {
	m.formContact = ""
	if m.payload.ContactID != 0 {
		m.formContact = fmt.Sprintf("%d", m.payload.ContactID)
	}

	kind := api.ContactCustomer
	if m.kind == draft.KindPurchase {
		kind = api.ContactSupplier
	}

	options := []huh.Option[string]{}

	ctx, cancel := ApiCtx()
	defer cancel()

	if list, err := m.contacts.ListByType(ctx, kind); err == nil {
		for _, c := range list {
			options = append(options, huh.NewOption(c.Name, fmt.Sprintf("%d", c.ID)))
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("contact").
				Title("Contact").
				Options(options...).
				Value(&m.formContact),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = editorStateContactForm

	return m, m.form.Init()
}

func (m EditorModel) enterDetailsForm() (tea.Model, tea.Cmd) {
	m.formDiscount = FormatAmount(m.payload.Discount)
	m.formTax = FormatAmount(m.payload.Tax)
	m.formPaid = FormatAmount(m.payload.Paid)
	m.formMethod = m.payload.PaymentMethod
	m.formNotes = m.payload.Notes

	amountField := func(key, title string, value *string) *huh.Input {
		return huh.NewInput().
			Key(key).
			Title(title).
			Value(value).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				_, err := ParseAmount(s)
				return err
			})
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			amountField("discount", "Discount", &m.formDiscount),
			amountField("tax", "Tax", &m.formTax),
			amountField("paid", "Paid", &m.formPaid),

			huh.NewInput().
				Key("method").
				Title("Payment method").
				Value(&m.formMethod),

			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.formNotes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = editorStateDetailsForm

	return m, m.form.Init()
}

func (m EditorModel) updateSubForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = editorStateOverview
			m.form = nil
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

	state := m.state
	m.form = nil
	m.state = editorStateOverview

	switch state {
	case editorStateItemForm:
		m.applyItemForm()
	case editorStateContactForm:
		m.applyContactForm()
	case editorStateDetailsForm:
		m.applyDetailsForm()
	}

	// Every change re-arms the save window.
	m.saver.Arm(m.payload)

	return m, nil
}

func (m *EditorModel) applyItemForm() {
	productID, _ := strconv.ParseInt(m.formProduct, 10, 64)
	if productID == 0 {
		return
	}

	qty, _ := strconv.ParseInt(strings.TrimSpace(m.formQty), 10, 64)

	price, err := ParseAmount(m.formPrice)
	if err != nil {
		if p, ok := m.catalog.Product(productID); ok {
			price = p.Price
		}
	}

	m.payload.Items = append(m.payload.Items, draft.LineItem{
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: price,
	})
}

func (m *EditorModel) applyContactForm() {
	if id, err := strconv.ParseInt(m.formContact, 10, 64); err == nil {
		m.payload.ContactID = id
	}
}

func (m *EditorModel) applyDetailsForm() {
	if v, err := ParseAmount(m.formDiscount); err == nil {
		m.payload.Discount = v
	}
	if v, err := ParseAmount(m.formTax); err == nil {
		m.payload.Tax = v
	}
	if v, err := ParseAmount(m.formPaid); err == nil {
		m.payload.Paid = v
	}

	m.payload.PaymentMethod = strings.TrimSpace(m.formMethod)
	m.payload.Notes = m.formNotes
}

func (m EditorModel) View() string {
	switch m.state {
	case editorStatePick:
		return m.viewPick()
	default:
		return m.viewOverview()
	}
}

func (m EditorModel) viewPick() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Drafts (%s)\n\n", m.kind)

	if len(m.list) == 0 {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("No open drafts. Press n to start one."))
	}

	for i, d := range m.list {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}

		fmt.Fprintf(&b, "%s%s  %s  %s\n",
			marker, d.Label, FormatAmount(d.Payload.Total()), FormatDate(d.UpdatedAt))
	}

	if m.status != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m EditorModel) viewOverview() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s draft\n\n", cases.Title(language.English).String(string(m.kind)))

	if m.payload.ContactID != 0 {
		name := fmt.Sprintf("#%d", m.payload.ContactID)
		if c, ok := m.contacts.Get(m.payload.ContactID); ok {
			name = c.Name
		}

		fmt.Fprintf(&b, "Contact: %s\n", name)
	} else {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("Contact: not set") + "\n")
	}

	b.WriteString("\n")

	if len(m.payload.Items) == 0 {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("No items yet. Press a to add one.") + "\n")
	}

	for _, it := range m.payload.Items {
		name := fmt.Sprintf("product #%d", it.ProductID)
		if p, ok := m.catalog.Product(it.ProductID); ok {
			name = p.Name
		}

		fmt.Fprintf(&b, "  %d x %s @ %s = %s\n",
			it.Quantity, name, FormatAmount(it.UnitPrice), FormatAmount(it.Quantity*it.UnitPrice))
	}

	fmt.Fprintf(&b, "\nDiscount %s | Tax %s | Paid %s\n",
		FormatAmount(m.payload.Discount), FormatAmount(m.payload.Tax), FormatAmount(m.payload.Paid))
	fmt.Fprintf(&b, "Total: %s\n", FormatAmount(m.payload.Total()))

	if m.status != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render(m.status))
	}

	content := lipgloss.NewStyle().Padding(1, 2).Render(b.String())

	if m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return content
}

// Messages

type editorListMsg struct {
	drafts []draft.Draft
}

func (m EditorModel) reloadList() tea.Cmd {
	return func() tea.Msg {
		return editorListMsg{drafts: m.drafts.List(m.kind)}
	}
}

type editorSubmitMsg struct {
	total int64
	err   error
}

func (m EditorModel) submitCmd() tea.Cmd {
	payload := m.payload
	kind := m.kind
	saver := m.saver

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		// Make sure the draft exists on disk before handing it off.
		saver.Arm(payload)
		if err := saver.Flush(ctx); err != nil {
			return editorSubmitMsg{err: err}
		}

		d, ok := m.drafts.Get(saver.DraftID())
		if !ok {
			d = draft.Draft{Kind: kind, Payload: payload}
		}

		recorded, err := m.txs.Submit(ctx, d)
		if err != nil {
			return editorSubmitMsg{err: err}
		}

		return editorSubmitMsg{total: recorded.Total}
	}
}
