package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newTestOrder(userID string) *domain.Order {
	return &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          domain.OrderStatusPendingSubmit,
		TotalAmount:     1400,
		DeliveryAddress: "мкр. Дружба, ул. Ленина, д. 12",
		CustomerName:    "Анна",
		CustomerPhone:   "79021234567",
		PaymentMethod:   domain.PaymentMethodCash,
		DeliveryMethod:  domain.DeliveryMethodCourier,
		DeliveryCost:    100,
		Items: []domain.OrderItem{
			{ProductID: 1, ProductName: "Маргарита", Quantity: 2, UnitPrice: 650},
		},
	}
}

func newTestLine(productID int64) domain.CartLine {
	return domain.CartLine{
		ProductID: productID,
		Name:      "Пепперони",
		UnitPrice: 700,
		Quantity:  1,
	}
}

func TestCreateOrder_Success(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("user-123")

	err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	fetched, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, order.UserID, fetched.UserID)
	assert.Equal(t, order.Status, fetched.Status)
	assert.Equal(t, order.TotalAmount, fetched.TotalAmount)
	assert.Equal(t, order.DeliveryCost, fetched.DeliveryCost)
	assert.Empty(t, fetched.RemoteID)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, order.Items[0].ProductID, fetched.Items[0].ProductID)
}

func TestCreateOrder_DuplicateID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("user-123")
	require.NoError(t, repo.CreateOrder(ctx, order))

	err := repo.CreateOrder(ctx, order)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetOrderByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrderByRemoteID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("user-remote")
	require.NoError(t, repo.CreateOrder(ctx, order))
	require.NoError(t, repo.ReconcileAndClearCart(ctx, order.ID, "srv-77", order.UserID, nil))

	fetched, err := repo.GetOrderByRemoteID(ctx, "srv-77")
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, domain.OrderStatusSubmitted, fetched.Status)

	_, err = repo.GetOrderByRemoteID(ctx, "srv-unknown")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersByUserID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user-list-test"

	order1 := newTestOrder(userID)
	require.NoError(t, repo.CreateOrder(ctx, order1))

	// Small sleep to ensure different created_at timestamps
	time.Sleep(10 * time.Millisecond)

	order2 := newTestOrder(userID)
	require.NoError(t, repo.CreateOrder(ctx, order2))

	require.NoError(t, repo.CreateOrder(ctx, newTestOrder("someone-else")))

	orders, err := repo.ListOrdersByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Ordered by created_at DESC (order2 created last, should be first)
	assert.Equal(t, order2.ID, orders[0].ID)
	assert.Equal(t, order1.ID, orders[1].ID)
}

func TestListOrdersByStatus(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user-status-test"

	pending := newTestOrder(userID)
	require.NoError(t, repo.CreateOrder(ctx, pending))

	submitted := newTestOrder(userID)
	require.NoError(t, repo.CreateOrder(ctx, submitted))
	require.NoError(t, repo.UpdateOrderStatus(ctx, submitted.ID, domain.OrderStatusPendingSubmit, domain.OrderStatusSubmitted))

	orders, err := repo.ListOrdersByStatus(ctx, userID, domain.OrderStatusPendingSubmit)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, pending.ID, orders[0].ID)
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.UpdateOrderStatus(context.Background(), uuid.New(), domain.OrderStatusSubmitted, domain.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateOrderStatus_StaleRead(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("user-stale")
	require.NoError(t, repo.CreateOrder(ctx, order))

	// The caller read SUBMITTED but the order is still PENDING_SUBMIT.
	err := repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusSubmitted, domain.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrStaleStatus)

	got, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPendingSubmit, got.Status)
}

func TestCartLines_UpsertAndRead(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "cart-user"

	require.NoError(t, repo.UpsertLine(ctx, userID, newTestLine(1)))

	line2 := newTestLine(1)
	line2.Quantity = 3
	require.NoError(t, repo.UpsertLine(ctx, userID, line2))

	lines, err := repo.Lines(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 700.0, lines[0].UnitPrice)
}

func TestCartLines_UpdateAndRemove(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "cart-user-2"

	require.NoError(t, repo.UpsertLine(ctx, userID, newTestLine(5)))
	require.NoError(t, repo.UpdateQuantity(ctx, userID, 5, 4))

	lines, err := repo.Lines(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	require.NoError(t, repo.RemoveLine(ctx, userID, 5))
	assert.ErrorIs(t, repo.RemoveLine(ctx, userID, 5), ErrLineNotFound)
	assert.ErrorIs(t, repo.UpdateQuantity(ctx, userID, 5, 1), ErrLineNotFound)
}

func TestReconcileAndClearCart_Atomic(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "reconcile-user"

	require.NoError(t, repo.UpsertLine(ctx, userID, newTestLine(1)))
	require.NoError(t, repo.UpsertLine(ctx, userID, newTestLine(2)))

	order := newTestOrder(userID)
	require.NoError(t, repo.CreateOrder(ctx, order))

	// Only the lines included in the order are cleared.
	err := repo.ReconcileAndClearCart(ctx, order.ID, "srv-42", userID, []int64{1})
	require.NoError(t, err)

	fetched, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "srv-42", fetched.RemoteID)
	assert.Equal(t, domain.OrderStatusSubmitted, fetched.Status)

	lines, err := repo.Lines(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ProductID)
}

func TestReconcileAndClearCart_MissingOrder(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.ReconcileAndClearCart(context.Background(), uuid.New(), "srv-1", "nobody", []int64{1})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
