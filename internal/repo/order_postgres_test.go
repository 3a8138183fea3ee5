//go:build integration

package repo

import (
	"context"
	"testing"
	"time"

	"checkout-gateway/internal/config"
	"checkout-gateway/internal/database"
	"checkout-gateway/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestOrderRepo_Postgres(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("checkout"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("error terminating postgres container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(ctx, config.Database{Driver: config.DriverPostgres, Path: connStr})
	require.NoError(t, err)
	defer db.Close()

	sut := NewOrderRepo(db, config.DriverPostgres)

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sut.CreateOrder(ctx, newOrder("order_old", base)))
	require.NoError(t, sut.CreateOrder(ctx, newOrder("order_new", base.Add(time.Minute))))

	orders, err := sut.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order_new", orders[0].ID)

	ok, err := sut.SettleOrder(ctx, "order_old", domain.OrderFailed, "pay_1", "forged", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sut.SettleOrder(ctx, "order_old", domain.OrderPaid, "pay_1", "sig", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := sut.FindById(ctx, "order_old")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.OrderFailed, found.Status)

	missing, err := sut.FindById(ctx, "order_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	health := database.New(db, config.DriverPostgres).Health(ctx)
	assert.Equal(t, "up", health["status"])
}
