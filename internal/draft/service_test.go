package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestStore(t *testing.T, storage *MockStorage, seed []Draft) *Store {
	t.Helper()

	storage.EXPECT().Load(gomock.Any()).Return(seed, nil)

	s, err := NewStore(context.Background(), storage)
	require.NoError(t, err)

	return s
}

func TestStore_Save(t *testing.T) {
	type args struct {
		kind    Kind
		payload Payload
		label   string
	}

	type testCase struct {
		name      string
		args      args
		wantLabel string
		wantErr   error
	}

	now := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []testCase{
		{
			name: "ExplicitLabel",
			args: args{
				kind:    KindSale,
				payload: Payload{ContactID: 7},
				label:   "March order",
			},
			wantLabel: "March order",
		},
		{
			name: "GeneratedLabel",
			args: args{
				kind:    KindPurchase,
				payload: Payload{Notes: "restock"},
			},
			wantLabel: "Draft purchase - Mar 10, 2024 2:30 PM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storage := NewMockStorage(ctrl)
			storage.EXPECT().Persist(gomock.Any(), gomock.Any()).Return(nil)

			s := newTestStore(t, storage, nil)
			s.now = func() time.Time { return now }

			got, err := s.Save(context.Background(), tt.args.kind, tt.args.payload, tt.args.label)
			require.NoError(t, err)

			assert.NotEmpty(t, got.ID)
			assert.Equal(t, tt.args.kind, got.Kind)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, now, got.CreatedAt)
			assert.Equal(t, now, got.UpdatedAt)
			assert.Len(t, s.List(""), 1)
		})
	}
}

func TestStore_Save_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storage := NewMockStorage(ctrl)
	storage.EXPECT().Persist(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	s := newTestStore(t, storage, nil)

	_, err := s.Save(context.Background(), KindSale, Payload{ContactID: 1}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	// The failed write must not leave the draft in memory.
	assert.Empty(t, s.List(""))
}

// flakyStorage is a stateful in-memory Storage whose writes can be made to
// fail, for exercising retry sequences the stateless mock cannot.
type flakyStorage struct {
	drafts []Draft
	fail   bool
}

func (f *flakyStorage) Load(_ context.Context) ([]Draft, error) {
	return append([]Draft(nil), f.drafts...), nil
}

func (f *flakyStorage) Persist(_ context.Context, drafts []Draft) error {
	if f.fail {
		return errors.New("disk full")
	}

	f.drafts = append([]Draft(nil), drafts...)

	return nil
}

func TestStore_Save_RetryAfterFailureYieldsOneDraft(t *testing.T) {
	ctx := context.Background()

	storage := &flakyStorage{}

	s, err := NewStore(ctx, storage)
	require.NoError(t, err)

	storage.fail = true
	_, err = s.Save(ctx, KindSale, Payload{ContactID: 1}, "")
	require.ErrorIs(t, err, ErrStorage)

	// One editing session, one draft: the retried save must not stack a
	// second copy on top of the failed one.
	storage.fail = false
	_, err = s.Save(ctx, KindSale, Payload{ContactID: 1}, "")
	require.NoError(t, err)

	assert.Len(t, s.List(""), 1)

	reloaded, err := NewStore(ctx, storage)
	require.NoError(t, err)
	assert.Len(t, reloaded.List(""), 1)
}

func TestStore_Delete_RetryAfterFailureReachesStorage(t *testing.T) {
	ctx := context.Background()

	storage := &flakyStorage{}

	s, err := NewStore(ctx, storage)
	require.NoError(t, err)

	d, err := s.Save(ctx, KindSale, Payload{ContactID: 2}, "")
	require.NoError(t, err)

	storage.fail = true
	require.ErrorIs(t, s.Delete(ctx, d.ID), ErrStorage)

	// The draft must survive the failed delete so the retry still finds it
	// and actually writes the removal through.
	_, ok := s.Get(d.ID)
	assert.True(t, ok)

	storage.fail = false
	require.NoError(t, s.Delete(ctx, d.ID))

	reloaded, err := NewStore(ctx, storage)
	require.NoError(t, err)
	assert.Empty(t, reloaded.List(""), "deleted draft must not resurrect on reload")
}

func TestStore_Update_FailedPersistLeavesDraftUntouched(t *testing.T) {
	ctx := context.Background()

	storage := &flakyStorage{}

	s, err := NewStore(ctx, storage)
	require.NoError(t, err)

	d, err := s.Save(ctx, KindSale, Payload{ContactID: 2, Notes: "original"}, "")
	require.NoError(t, err)

	storage.fail = true
	notes := "edited"
	require.ErrorIs(t, s.Update(ctx, d.ID, PayloadPatch{Notes: &notes}), ErrStorage)

	got, ok := s.Get(d.ID)
	require.True(t, ok)
	assert.Equal(t, "original", got.Payload.Notes)
	assert.Equal(t, d.UpdatedAt, got.UpdatedAt)
}

func TestStore_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	seed := []Draft{{
		ID:   "d-1",
		Kind: KindSale,
		Payload: Payload{
			ContactID: 3,
			Items:     []LineItem{{ProductID: 10, Quantity: 2, UnitPrice: 500}},
			Notes:     "keep me",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}}

	storage := NewMockStorage(ctrl)
	storage.EXPECT().Persist(gomock.Any(), gomock.Any()).Return(nil)

	s := newTestStore(t, storage, seed)
	s.now = func() time.Time { return updated }

	discount := int64(100)
	err := s.Update(context.Background(), "d-1", PayloadPatch{Discount: &discount})
	require.NoError(t, err)

	got, ok := s.Get("d-1")
	require.True(t, ok)

	// Merge semantics: fields absent from the patch survive.
	assert.Equal(t, int64(3), got.Payload.ContactID)
	assert.Equal(t, "keep me", got.Payload.Notes)
	assert.Len(t, got.Payload.Items, 1)
	assert.Equal(t, int64(100), got.Payload.Discount)

	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, updated, got.UpdatedAt)
}

func TestStore_Update_UnknownID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	seed := []Draft{{ID: "d-1", Kind: KindSale}}

	// No Persist expectation: an unknown id must not touch storage.
	storage := NewMockStorage(ctrl)
	s := newTestStore(t, storage, seed)

	notes := "late autosave"
	err := s.Update(context.Background(), "gone", PayloadPatch{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, seed, s.List(""))
}

func TestStore_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	seed := []Draft{
		{ID: "d-1", Kind: KindSale},
		{ID: "d-2", Kind: KindPurchase},
	}

	storage := NewMockStorage(ctrl)
	storage.EXPECT().Persist(gomock.Any(), gomock.Any()).Return(nil)

	s := newTestStore(t, storage, seed)

	require.NoError(t, s.Delete(context.Background(), "d-1"))
	assert.Len(t, s.List(""), 1)

	// Absent id is a no-op and does not touch storage.
	require.NoError(t, s.Delete(context.Background(), "d-1"))
	assert.Len(t, s.List(""), 1)
}

func TestStore_List_FilterByKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	seed := []Draft{
		{ID: "d-1", Kind: KindSale},
		{ID: "d-2", Kind: KindPurchase},
		{ID: "d-3", Kind: KindSale},
	}

	storage := NewMockStorage(ctrl)
	s := newTestStore(t, storage, seed)

	assert.Len(t, s.List(""), 3)
	assert.Len(t, s.List(KindSale), 2)
	assert.Len(t, s.List(KindPurchase), 1)
}

func TestStore_ClearOld(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	maxAge := 30 * 24 * time.Hour

	seed := []Draft{
		{ID: "ancient", CreatedAt: now.Add(-maxAge - time.Second)},
		{ID: "boundary", CreatedAt: now.Add(-maxAge)}, // exactly at the cutoff: retained
		{ID: "fresh", CreatedAt: now.Add(-time.Hour)},
	}

	storage := NewMockStorage(ctrl)
	storage.EXPECT().
		Persist(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, drafts []Draft) error {
			require.Len(t, drafts, 2)
			return nil
		})

	s := newTestStore(t, storage, seed)
	s.now = func() time.Time { return now }

	require.NoError(t, s.ClearOld(context.Background(), maxAge))

	_, ok := s.Get("ancient")
	assert.False(t, ok)
	_, ok = s.Get("boundary")
	assert.True(t, ok)
	_, ok = s.Get("fresh")
	assert.True(t, ok)
}

func TestStore_ClearOld_NothingToEvict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	seed := []Draft{{ID: "fresh", CreatedAt: now.Add(-time.Hour)}}

	// No Persist expectation: nothing evicted, nothing written.
	storage := NewMockStorage(ctrl)
	s := newTestStore(t, storage, seed)
	s.now = func() time.Time { return now }

	require.NoError(t, s.ClearOld(context.Background(), 24*time.Hour))
	assert.Len(t, s.List(""), 1)
}

func TestPayload_Empty(t *testing.T) {
	assert.True(t, Payload{}.Empty())
	assert.True(t, Payload{Notes: "   "}.Empty())
	assert.False(t, Payload{ContactID: 1}.Empty())
	assert.False(t, Payload{Items: []LineItem{{ProductID: 1, Quantity: 1}}}.Empty())
	assert.False(t, Payload{Notes: "call back tuesday"}.Empty())
}

func TestPayload_Total(t *testing.T) {
	p := Payload{
		Items: []LineItem{
			{ProductID: 1, Quantity: 2, UnitPrice: 1500},
			{ProductID: 2, Quantity: 1, UnitPrice: 700},
		},
		Discount: 200,
		Tax:      370,
	}

	assert.Equal(t, int64(3870), p.Total())
}
