package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) UpdateSubscriptionByCustomerID(ctx context.Context, customerID string, upd models.SubscriptionUpdate) error {
	return m.Called(ctx, customerID, upd).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func makeEvent(eventType, customerID, priceID string) *Event {
	payload := map[string]any{
		"type": eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":       "sub_1",
				"customer": customerID,
			},
		},
	}
	if priceID != "" {
		payload["data"].(map[string]any)["object"].(map[string]any)["items"] = map[string]any{
			"data": []map[string]any{
				{"price": map[string]any{"id": priceID}},
			},
		}
	}
	raw, _ := json.Marshal(payload)
	var evt Event
	_ = json.Unmarshal(raw, &evt)
	return &evt
}

func TestParseEventType(t *testing.T) {
	assert.Equal(t, EventSubscriptionCreated, ParseEventType("customer.subscription.created"))
	assert.Equal(t, EventSubscriptionUpdated, ParseEventType("Customer.Subscription.Updated"))
	assert.Equal(t, EventSubscriptionDeleted, ParseEventType("customer.subscription.deleted"))
	assert.Equal(t, EventUnknown, ParseEventType("invoice.paid"))
	assert.Equal(t, EventUnknown, ParseEventType(""))
}

func TestEngine_Process(t *testing.T) {
	prices := PriceIDs{Pro: "price_pro", Free: "price_free"}

	tests := []struct {
		name       string
		evt        *Event
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name: "created activates subscription with pro plan",
			evt:  makeEvent("customer.subscription.created", "cus_1", "price_pro"),
			setupMocks: func(r *RepoMock) {
				r.On("UpdateSubscriptionByCustomerID", mock.Anything, "cus_1",
					mock.MatchedBy(func(upd models.SubscriptionUpdate) bool {
						return upd.Plan != nil && *upd.Plan == models.PlanPro &&
							upd.Status != nil && *upd.Status == models.StatusActive
					})).Return(nil).Once()
			},
		},
		{
			name: "created with unknown price still activates without plan",
			evt:  makeEvent("customer.subscription.created", "cus_1", "price_other"),
			setupMocks: func(r *RepoMock) {
				r.On("UpdateSubscriptionByCustomerID", mock.Anything, "cus_1",
					mock.MatchedBy(func(upd models.SubscriptionUpdate) bool {
						return upd.Plan == nil &&
							upd.Status != nil && *upd.Status == models.StatusActive
					})).Return(nil).Once()
			},
		},
		{
			name:       "created without customer fails",
			evt:        makeEvent("customer.subscription.created", "", "price_pro"),
			setupMocks: func(_ *RepoMock) {},
			wantErr:    ErrMissingCustomer,
		},
		{
			name: "updated maps free price",
			evt:  makeEvent("customer.subscription.updated", "cus_2", "price_free"),
			setupMocks: func(r *RepoMock) {
				r.On("UpdateSubscriptionByCustomerID", mock.Anything, "cus_2",
					mock.MatchedBy(func(upd models.SubscriptionUpdate) bool {
						return upd.Plan != nil && *upd.Plan == models.PlanFree &&
							upd.Status != nil && *upd.Status == models.StatusActive
					})).Return(nil).Once()
			},
		},
		{
			name:       "updated without customer fails",
			evt:        makeEvent("customer.subscription.updated", "", "price_pro"),
			setupMocks: func(_ *RepoMock) {},
			wantErr:    ErrMissingCustomer,
		},
		{
			name:       "updated without price fails",
			evt:        makeEvent("customer.subscription.updated", "cus_2", ""),
			setupMocks: func(_ *RepoMock) {},
			wantErr:    ErrMissingPrice,
		},
		{
			name:       "updated with unknown price leaves local state untouched",
			evt:        makeEvent("customer.subscription.updated", "cus_2", "price_legacy"),
			setupMocks: func(_ *RepoMock) {},
		},
		{
			name: "deleted cancels keeping last plan",
			evt:  makeEvent("customer.subscription.deleted", "cus_3", ""),
			setupMocks: func(r *RepoMock) {
				r.On("UpdateSubscriptionByCustomerID", mock.Anything, "cus_3",
					mock.MatchedBy(func(upd models.SubscriptionUpdate) bool {
						return upd.Plan == nil &&
							upd.Status != nil && *upd.Status == models.StatusCanceled
					})).Return(nil).Once()
			},
		},
		{
			name:       "deleted without customer fails",
			evt:        makeEvent("customer.subscription.deleted", "", ""),
			setupMocks: func(_ *RepoMock) {},
			wantErr:    ErrMissingCustomer,
		},
		{
			name:       "unknown event type is acknowledged without writes",
			evt:        makeEvent("invoice.paid", "cus_4", "price_pro"),
			setupMocks: func(_ *RepoMock) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			engine := New(repo, prices, newNoopLogger())

			err := engine.Process(context.Background(), tt.evt)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestEngine_Process_Idempotent(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateSubscriptionByCustomerID", mock.Anything, "cus_1",
		mock.MatchedBy(func(upd models.SubscriptionUpdate) bool {
			return upd.Plan != nil && *upd.Plan == models.PlanPro &&
				upd.Status != nil && *upd.Status == models.StatusActive
		})).Return(nil).Twice()

	engine := New(repo, PriceIDs{Pro: "price_pro", Free: "price_free"}, newNoopLogger())
	evt := makeEvent("customer.subscription.created", "cus_1", "price_pro")

	// Повторная доставка того же события пишет то же целевое состояние.
	require.NoError(t, engine.Process(context.Background(), evt))
	require.NoError(t, engine.Process(context.Background(), evt))
	repo.AssertExpectations(t)
}

func TestEngine_Process_RepoErrorPropagates(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateSubscriptionByCustomerID", mock.Anything, "cus_9", mock.Anything).
		Return(repository.ErrSubscriptionNotFound).Once()

	engine := New(repo, PriceIDs{Pro: "price_pro"}, newNoopLogger())
	evt := makeEvent("customer.subscription.deleted", "cus_9", "")

	err := engine.Process(context.Background(), evt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrSubscriptionNotFound))
	repo.AssertExpectations(t)
}
