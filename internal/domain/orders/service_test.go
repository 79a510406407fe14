package orders_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/monument-calc/internal/domain/orders"
	"github.com/Spok95/monument-calc/internal/domain/orders/mocks"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func validRequest() orders.Request {
	return orders.Request{
		Name:    gofakeit.FirstName(),
		Phone:   "+7 (921) 555-12-34",
		Message: gofakeit.Sentence(5),
		Source:  orders.SourceContact,
		Channel: orders.ChannelTelegram,
		Total:   decimal.RequireFromString("1830.00"),
	}
}

func TestServiceSubmit(t *testing.T) {
	t.Parallel()

	type deps struct {
		repo     *mocks.MockRepository
		notifier *mocks.MockNotifier
	}

	type testCase struct {
		name   string
		req    func() orders.Request
		setup  func(d deps)
		assert func(t *testing.T, o *orders.Order, err error)
	}

	tests := []testCase{
		{
			name: "validation error: empty name",
			req: func() orders.Request {
				r := validRequest()
				r.Name = "   "
				return r
			},
			setup: func(d deps) {},
			assert: func(t *testing.T, o *orders.Order, err error) {
				assert.ErrorIs(t, err, orders.ErrValidation)
				assert.Nil(t, o)
			},
		},
		{
			name: "validation error: bad phone",
			req: func() orders.Request {
				r := validRequest()
				r.Phone = "call me"
				return r
			},
			setup: func(d deps) {},
			assert: func(t *testing.T, o *orders.Order, err error) {
				assert.ErrorIs(t, err, orders.ErrValidation)
			},
		},
		{
			name: "persist error is a delivery failure",
			req:  validRequest,
			setup: func(d deps) {
				d.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
			},
			assert: func(t *testing.T, o *orders.Order, err error) {
				assert.ErrorIs(t, err, orders.ErrDelivery)
				assert.Nil(t, o)
			},
		},
		{
			name: "notify error still succeeds",
			req:  validRequest,
			setup: func(d deps) {
				d.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
				d.notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("telegram down")).Once()
			},
			assert: func(t *testing.T, o *orders.Order, err error) {
				require.NoError(t, err)
				require.NotNil(t, o)
				assert.Equal(t, orders.StatusNew, o.Status)
			},
		},
		{
			name: "success",
			req:  validRequest,
			setup: func(d deps) {
				d.repo.On("Create", mock.Anything, mock.MatchedBy(func(o *orders.Order) bool {
					return o.ID != uuid.Nil && o.Status == orders.StatusNew && o.Source == orders.SourceContact && o.Channel == orders.ChannelTelegram
				})).Return(nil).Once()
				d.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()
			},
			assert: func(t *testing.T, o *orders.Order, err error) {
				require.NoError(t, err)
				assert.True(t, o.Total.Equal(decimal.RequireFromString("1830")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := deps{repo: mocks.NewMockRepository(t), notifier: mocks.NewMockNotifier(t)}
			tt.setup(d)

			svc := orders.NewService(d.repo, d.notifier, orders.NewCooldown(time.Hour), discard(), nil)
			o, err := svc.Submit(context.Background(), "chat:1", tt.req())
			tt.assert(t, o, err)
		})
	}
}

func TestServiceSubmitCooldown(t *testing.T) {
	t.Parallel()

	repo := orders.NewMemRepo()
	notifier := mocks.NewMockNotifier(t)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Twice()

	svc := orders.NewService(repo, notifier, orders.NewCooldown(time.Hour), discard(), nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "ip:10.0.0.1", validRequest())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "ip:10.0.0.1", validRequest())
	require.ErrorIs(t, err, orders.ErrRateLimited)
	wait, ok := orders.RetryAfter(err)
	require.True(t, ok)
	assert.Greater(t, wait, 59*time.Minute)

	// другой ключ не ограничен
	_, err = svc.Submit(ctx, "ip:10.0.0.2", validRequest())
	require.NoError(t, err)

	inbox, err := svc.Inbox(ctx, orders.StatusNew, 10)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)
}

type slowRepo struct {
	*orders.MemRepo
	delay time.Duration
}

func (r slowRepo) Create(ctx context.Context, o *orders.Order) error {
	time.Sleep(r.delay)
	return r.MemRepo.Create(ctx, o)
}

func TestServiceSubmitConcurrentSameKey(t *testing.T) {
	t.Parallel()

	repo := slowRepo{MemRepo: orders.NewMemRepo(), delay: 20 * time.Millisecond}
	svc := orders.NewService(repo, nil, orders.NewCooldown(time.Hour), discard(), nil)
	ctx := context.Background()

	errs := make(chan error, 5)
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, "ip:1.2.3.4", validRequest())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var accepted, limited int
	for err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, orders.ErrRateLimited):
			limited++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 4, limited)

	inbox, err := svc.Inbox(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}

func TestServiceFailedSubmitDoesNotStartCooldown(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockRepository(t)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	svc := orders.NewService(repo, nil, orders.NewCooldown(time.Hour), discard(), nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "chat:7", validRequest())
	require.ErrorIs(t, err, orders.ErrDelivery)

	_, err = svc.Submit(ctx, "chat:7", validRequest())
	require.NoError(t, err)
}

func TestServiceInboxAndMarkProcessed(t *testing.T) {
	t.Parallel()

	repo := orders.NewMemRepo()
	svc := orders.NewService(repo, nil, nil, discard(), nil)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "a", validRequest())
	require.NoError(t, err)
	second, err := svc.Submit(ctx, "b", validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.MarkProcessed(ctx, first.ID))

	fresh, err := svc.Inbox(ctx, orders.StatusNew, 0)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, second.ID, fresh[0].ID)

	all, err := svc.Inbox(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	got, err := svc.Order(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusProcessed, got.Status)
	assert.NotNil(t, got.ProcessedAt)

	assert.ErrorIs(t, svc.MarkProcessed(ctx, uuid.New()), orders.ErrNotFound)
	_, err = svc.Order(ctx, uuid.New())
	assert.ErrorIs(t, err, orders.ErrNotFound)
}
