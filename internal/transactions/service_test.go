package transactions_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/database"
	"github.com/stockdesk-app/stockdesk/internal/draft"
	"github.com/stockdesk-app/stockdesk/internal/draft/store"
	"github.com/stockdesk-app/stockdesk/internal/mockapi"
	"github.com/stockdesk-app/stockdesk/internal/transactions"
)

type fixture struct {
	client   *api.Client
	drafts   *draft.Store
	svc      *transactions.Service
	customer api.Contact
	product  api.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := mockapi.New("test-secret")
	backend.SeedDemo()

	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	_, err := client.Login(ctx, "admin", "admin")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "stockdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	drafts, err := draft.NewStore(ctx, store.New(db))
	require.NoError(t, err)

	customers, err := client.ListContacts(ctx, api.ContactCustomer)
	require.NoError(t, err)
	require.NotEmpty(t, customers)

	products, err := client.ListProducts(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, products)

	return &fixture{
		client:   client,
		drafts:   drafts,
		svc:      transactions.NewService(client, drafts),
		customer: customers[0],
		product:  products[0],
	}
}

func (f *fixture) saleDraft(t *testing.T, contactID int64) draft.Draft {
	t.Helper()

	d, err := f.drafts.Save(context.Background(), draft.KindSale, draft.Payload{
		Date:      time.Now(),
		ContactID: contactID,
		Items: []draft.LineItem{
			{ProductID: f.product.ID, Quantity: 2, UnitPrice: f.product.Price},
		},
		Paid: 2 * f.product.Price,
	}, "")
	require.NoError(t, err)

	return d
}

func TestService_Submit_RecordsAndRetiresDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.saleDraft(t, f.customer.ID)
	stockBefore := f.product.Stock

	recorded, err := f.svc.Submit(ctx, d)
	require.NoError(t, err)
	assert.Positive(t, recorded.ID)
	assert.Equal(t, api.TransactionSale, recorded.Kind)
	assert.Equal(t, 2*f.product.Price, recorded.Total)

	_, ok := f.drafts.Get(d.ID)
	assert.False(t, ok, "accepted draft is retired")

	product, err := f.client.GetProduct(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, stockBefore-2, product.Stock, "sale moves stock")
}

func TestService_Submit_RejectedDraftSurvives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Contact 9999 passes client-side validation but the backend rejects it.
	d := f.saleDraft(t, 9999)

	_, err := f.svc.Submit(ctx, d)
	require.Error(t, err)
	assert.True(t, api.IsClientError(err))

	_, ok := f.drafts.Get(d.ID)
	assert.True(t, ok, "rejected draft stays for another try")

	listed, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed, "rolled back, nothing recorded")
}

func TestService_Submit_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, draft.Draft{
		ID:   "d1",
		Kind: draft.KindSale,
		Payload: draft.Payload{
			ContactID: f.customer.ID,
		},
	})
	assert.ErrorIs(t, err, transactions.ErrInvalid)

	_, err = f.svc.Submit(ctx, draft.Draft{
		ID:   "d2",
		Kind: draft.KindSale,
		Payload: draft.Payload{
			Items: []draft.LineItem{{ProductID: f.product.ID, Quantity: 1, UnitPrice: 100}},
		},
	})
	assert.ErrorIs(t, err, transactions.ErrInvalid)
}

func TestService_Delete_RevertsRemoteState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.saleDraft(t, f.customer.ID)

	recorded, err := f.svc.Submit(ctx, d)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, recorded.ID))

	listed, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	product, err := f.client.GetProduct(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, f.product.Stock, product.Stock, "deleting the sale restores stock")
}
