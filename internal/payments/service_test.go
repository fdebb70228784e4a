package payments_test

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/cache"
	"github.com/stockdesk-app/stockdesk/internal/mockapi"
	"github.com/stockdesk-app/stockdesk/internal/payments"
)

// countingAPI wraps the real client to observe how often the service
// actually hits the network.
type countingAPI struct {
	*api.Client
	lists atomic.Int64
}

func (c *countingAPI) ListPayments(ctx context.Context, filter api.PaymentFilter) ([]api.Payment, error) {
	c.lists.Add(1)
	return c.Client.ListPayments(ctx, filter)
}

func newFixture(t *testing.T) (*countingAPI, *api.Contact) {
	t.Helper()

	backend := mockapi.New("test-secret")
	backend.SeedDemo()

	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, 5*time.Second)

	_, err := client.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)

	customers, err := client.ListContacts(context.Background(), api.ContactCustomer)
	require.NoError(t, err)
	require.NotEmpty(t, customers)

	return &countingAPI{Client: client}, &customers[0]
}

func TestService_List_ReadThrough(t *testing.T) {
	client, _ := newFixture(t)
	svc := payments.NewService(client)

	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)

	_, err = svc.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), client.lists.Load(), "second read is served from cache")
}

func TestService_Create_Reconciles(t *testing.T) {
	client, customer := newFixture(t)
	summary := cache.NewValue[api.Summary]()
	summary.Set(api.Summary{})

	svc := payments.NewService(client, summary)
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)

	created, err := svc.Create(ctx, api.PaymentParams{
		Type:      api.PaymentIn,
		Amount:    5000,
		Method:    "cash",
		ContactID: customer.ID,
		Date:      time.Now(),
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID, "provisional id replaced by the server-assigned one")

	assert.True(t, summary.NeedsFetch(), "aggregate view refetches after a settled mutation")

	// The settled mutation marks the collection stale; the next List
	// reconciles with the server.
	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, int64(2), client.lists.Load())
}

func TestService_Create_RemoteRejectionRollsBack(t *testing.T) {
	client, _ := newFixture(t)
	svc := payments.NewService(client)
	ctx := context.Background()

	before, err := svc.List(ctx)
	require.NoError(t, err)

	// Contact 9999 does not exist; the backend rejects with a 400.
	_, err = svc.Create(ctx, api.PaymentParams{
		Type:      api.PaymentIn,
		Amount:    100,
		ContactID: 9999,
		Date:      time.Now(),
	})
	require.Error(t, err)
	assert.True(t, api.IsClientError(err))
	assert.Equal(t, "contact does not exist", err.Error())

	after, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "rolled-back cache equals the pre-mutation state")
	assert.Equal(t, int64(1), client.lists.Load(), "failed mutation does not mark the cache stale")
}

func TestService_Create_ValidationNeverTouchesNetwork(t *testing.T) {
	client, customer := newFixture(t)
	svc := payments.NewService(client)
	ctx := context.Background()

	_, err := svc.Create(ctx, api.PaymentParams{
		Type:      api.PaymentIn,
		Amount:    0,
		ContactID: customer.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, payments.ErrInvalid)

	assert.Equal(t, int64(0), client.lists.Load())
}

func TestService_Update_MergesPartialPatch(t *testing.T) {
	client, customer := newFixture(t)
	svc := payments.NewService(client)
	ctx := context.Background()

	created, err := svc.Create(ctx, api.PaymentParams{
		Type:      api.PaymentIn,
		Amount:    2000,
		Method:    "bank transfer",
		ContactID: customer.ID,
		Notes:     "invoice 42",
		Date:      time.Now(),
	})
	require.NoError(t, err)

	amount := int64(2500)
	updated, err := svc.Update(ctx, created.ID, api.PaymentPatch{Amount: &amount})
	require.NoError(t, err)

	assert.Equal(t, int64(2500), updated.Amount)
	assert.Equal(t, "bank transfer", updated.Method, "fields outside the patch survive")
	assert.Equal(t, "invoice 42", updated.Notes)
}

func TestService_Delete(t *testing.T) {
	client, customer := newFixture(t)
	svc := payments.NewService(client)
	ctx := context.Background()

	created, err := svc.Create(ctx, api.PaymentParams{
		Type:      api.PaymentOut,
		Amount:    700,
		ContactID: customer.ID,
		Date:      time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
