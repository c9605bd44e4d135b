package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tripbook/internal/models"
)

func seedOrder(t *testing.T, env *testEnv, orderID string, owner uuid.UUID, status models.OrderStatus, date time.Time) {
	t.Helper()
	require.NoError(t, env.orders.Create(context.Background(), &models.Order{
		OrderID:      orderID,
		UserID:       owner,
		ProductType:  "flight",
		ProductTitle: "MU5101 SHA-PEK",
		OrderDate:    date,
		TotalAmount:  1280,
		Status:       status,
	}))
}

func TestListShowsOnlyOwnersOrders(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	u1, u2 := uuid.New(), uuid.New()

	seedOrder(t, env, "ORD-U1", u1, models.OrderPendingTravel, env.clock.Now())

	list, err := env.orderService.List(ctx, u1, ListFilter{Status: "all", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "ORD-U1", list.Orders[0].OrderID)

	list, err = env.orderService.List(ctx, u2, ListFilter{Status: "all", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, list.Orders)
	assert.Equal(t, PageInfo{CurrentPage: 1, PageSize: 10, TotalPages: 1, TotalCount: 0}, list.Pagination)
}

func TestListPaginationWindow(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	owner := uuid.New()

	for i := 0; i < 23; i++ {
		seedOrder(t, env, fmt.Sprintf("ORD-%02d", i), owner, models.OrderPendingTravel, env.clock.Now().Add(time.Duration(i)*time.Minute))
	}

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		list, err := env.orderService.List(ctx, owner, ListFilter{Page: page, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, list.Pagination.TotalPages)
		assert.Equal(t, int64(23), list.Pagination.TotalCount)
		for _, o := range list.Orders {
			assert.False(t, seen[o.OrderID], "duplicate %s", o.OrderID)
			seen[o.OrderID] = true
		}
	}
	assert.Len(t, seen, 23)

	list, err := env.orderService.List(ctx, owner, ListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, "ORD-22", list.Orders[0].OrderID, "newest order date first")

	list, err = env.orderService.List(ctx, owner, ListFilter{Page: 4, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, list.Orders)
}

func TestListClampsPaging(t *testing.T) {
	env := newTestEnv(t, false)

	list, err := env.orderService.List(context.Background(), uuid.New(), ListFilter{Page: -5, PageSize: 100000})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Pagination.CurrentPage)
	assert.Equal(t, 100, list.Pagination.PageSize)
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	owner := uuid.New()

	seedOrder(t, env, "ORD-A", owner, models.OrderPendingTravel, env.clock.Now())
	seedOrder(t, env, "ORD-B", owner, models.OrderCancelled, env.clock.Now())

	list, err := env.orderService.List(ctx, owner, ListFilter{Status: "cancelled", ProductType: "all"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "ORD-B", list.Orders[0].OrderID)

	list, err = env.orderService.List(ctx, owner, ListFilter{ProductType: "hotel"})
	require.NoError(t, err)
	assert.Empty(t, list.Orders)
}

func TestGetEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	seedOrder(t, env, "ORD-G", owner, models.OrderPendingTravel, env.clock.Now())

	detail, err := env.orderService.Get(ctx, owner, "ORD-G")
	require.NoError(t, err)
	assert.Equal(t, "ORD-G", detail.OrderID)
	assert.Equal(t, []OrderAction{ActionCancel, ActionInvoice}, detail.Actions)

	_, err = env.orderService.Get(ctx, stranger, "ORD-G")
	assert.ErrorIs(t, err, ErrOrderForbidden)

	_, err = env.orderService.Get(ctx, owner, "ORD-NOPE")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestActionsFollowStatus(t *testing.T) {
	assert.Empty(t, ActionsFor(models.OrderPendingPayment))
	assert.NotNil(t, ActionsFor(models.OrderPendingPayment))
	assert.Equal(t, []OrderAction{ActionCancel, ActionInvoice}, ActionsFor(models.OrderPendingTravel))
	assert.Equal(t, []OrderAction{ActionInvoice}, ActionsFor(models.OrderPendingReview))
	assert.Equal(t, []OrderAction{ActionInvoice}, ActionsFor(models.OrderCancelled))
	assert.Empty(t, ActionsFor("unknown"))

	actions := ActionsFor(models.OrderPendingTravel)
	actions[0] = "mutated"
	assert.Equal(t, ActionCancel, ActionsFor(models.OrderPendingTravel)[0])
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, Transition(models.OrderPendingTravel, models.OrderCancelled))
	assert.False(t, Transition(models.OrderPendingPayment, models.OrderCancelled))
	assert.False(t, Transition(models.OrderPendingReview, models.OrderCancelled))
	assert.False(t, Transition(models.OrderCancelled, models.OrderPendingTravel))
	assert.False(t, Transition(models.OrderPendingPayment, models.OrderPendingTravel))
}

func TestCancelTwice(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	owner := uuid.New()

	seedOrder(t, env, "ORD-C", owner, models.OrderPendingTravel, env.clock.Now())
	env.clock.Advance(time.Hour)

	require.NoError(t, env.orderService.Cancel(ctx, owner, "ORD-C"))
	assert.ErrorIs(t, env.orderService.Cancel(ctx, owner, "ORD-C"), ErrIllegalTransition)

	got, err := env.orders.FindByOrderID(ctx, "ORD-C")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)
	assert.True(t, got.UpdatedAt.Equal(env.clock.Now()))
}

func TestCancelRejects(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	owner := uuid.New()

	seedOrder(t, env, "ORD-P", owner, models.OrderPendingPayment, env.clock.Now())
	seedOrder(t, env, "ORD-T", owner, models.OrderPendingTravel, env.clock.Now())

	assert.ErrorIs(t, env.orderService.Cancel(ctx, owner, "ORD-P"), ErrIllegalTransition)
	assert.ErrorIs(t, env.orderService.Cancel(ctx, uuid.New(), "ORD-T"), ErrOrderNotFound)
	assert.ErrorIs(t, env.orderService.Cancel(ctx, owner, "ORD-X"), ErrOrderNotFound)

	got, err := env.orders.FindByOrderID(ctx, "ORD-T")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPendingTravel, got.Status)
}

func TestRenderDownload(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	owner := uuid.New()

	require.NoError(t, env.orders.Create(ctx, &models.Order{
		OrderID:      "ORD-D",
		UserID:       owner,
		ProductType:  "flight",
		ProductTitle: "MU5101 SHA-PEK",
		OrderDate:    time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		TotalAmount:  1280,
		Status:       models.OrderPendingTravel,
		Details: models.OrderDetails{
			TravelerInfo: []byte(`{"name":"Li Lei"}`),
			PriceDetails: []byte(`null`),
		},
	}))

	text, err := env.orderService.RenderDownload(ctx, owner, "ORD-D")
	require.NoError(t, err)
	assert.Contains(t, text, "Order ID: ORD-D\n")
	assert.Contains(t, text, "Status: pending_travel\n")
	assert.Contains(t, text, "Order Date: 2026-04-02T09:30:00Z\n")
	assert.Contains(t, text, "Total Amount: 1280.00\n")
	assert.Contains(t, text, "Traveler Info:\n{\n  \"name\": \"Li Lei\"\n}\n")
	assert.NotContains(t, text, "Price Details")
	assert.NotContains(t, text, "Product Info")

	_, err = env.orderService.RenderDownload(ctx, uuid.New(), "ORD-D")
	assert.ErrorIs(t, err, ErrDownloadFailed)
	_, err = env.orderService.RenderDownload(ctx, owner, "ORD-NONE")
	assert.ErrorIs(t, err, ErrDownloadFailed)
}

func TestPlaceOrder(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	owner := uuid.New()

	order, err := env.orderService.Place(ctx, owner, PlaceOrderInput{
		ProductType:  "train",
		ProductTitle: "G1 Beijing-Shanghai",
		TotalAmount:  553,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.OrderID, "ORD-"))
	assert.Len(t, order.OrderID, len("ORD-")+10)
	assert.Equal(t, models.OrderPendingPayment, order.Status)
	assert.True(t, order.OrderDate.Equal(env.clock.Now()))

	detail, err := env.orderService.Get(ctx, owner, order.OrderID)
	require.NoError(t, err)
	assert.Empty(t, detail.Actions)

	_, err = env.orderService.Place(ctx, owner, PlaceOrderInput{ProductType: "train", TotalAmount: 10})
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = env.orderService.Place(ctx, owner, PlaceOrderInput{ProductType: "train", ProductTitle: "x", TotalAmount: 0})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestListUnknownStatusMatchesNothing(t *testing.T) {
	env := newTestEnv(t, false)
	owner := uuid.New()
	seedOrder(t, env, "ORD-S", owner, models.OrderPendingTravel, env.clock.Now())

	list, err := env.orderService.List(context.Background(), owner, ListFilter{Status: "shipped", Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.NotNil(t, list.Orders)
	assert.Empty(t, list.Orders)
	assert.Equal(t, PageInfo{CurrentPage: 2, PageSize: 5, TotalPages: 1, TotalCount: 0}, list.Pagination)
}

func TestGenerateOrderIDIsLowercaseBase36(t *testing.T) {
	for i := 0; i < 20; i++ {
		id, err := generateOrderID()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(id, "ORD-"))
		for _, r := range strings.TrimPrefix(id, "ORD-") {
			assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z'), id)
		}
	}
}
