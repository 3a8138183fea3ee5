package repo

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"checkout-gateway/internal/config"
	"checkout-gateway/internal/database"
	"checkout-gateway/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OrderRepoTestSuite struct {
	suite.Suite
	db  *sql.DB
	sut OrderRepo
	ctx context.Context
}

func (s *OrderRepoTestSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := database.Open(s.ctx, config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(s.T().TempDir(), "orders.db"),
	})
	require.NoError(s.T(), err)

	s.db = db
	s.sut = NewOrderRepo(db, config.DriverSQLite)
}

func (s *OrderRepoTestSuite) TearDownTest() {
	s.db.Close()
}

func newOrder(id string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID:        id,
		Amount:    50000,
		Currency:  "INR",
		Status:    domain.OrderCreated,
		Receipt:   "rcpt_" + id,
		Product:   "Morning Kit",
		Quantity:  2,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func (s *OrderRepoTestSuite) TestCreateAndFind() {
	t := s.T()
	now := time.Now().UTC().Truncate(time.Second)

	order := newOrder("order_A", now)
	order.CustomerEmail = "a@example.com"
	require.NoError(t, s.sut.CreateOrder(s.ctx, order))

	found, err := s.sut.FindById(s.ctx, "order_A")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(50000), found.Amount)
	assert.Equal(t, "INR", found.Currency)
	assert.Equal(t, domain.OrderCreated, found.Status)
	assert.Equal(t, "Morning Kit", found.Product)
	assert.Equal(t, 2, found.Quantity)
	assert.Equal(t, "a@example.com", found.CustomerEmail)
	assert.Nil(t, found.PaymentID)
	assert.Nil(t, found.VerifiedAt)
	assert.WithinDuration(t, now, found.CreatedAt, time.Second)
}

func (s *OrderRepoTestSuite) TestCreateDuplicateID() {
	t := s.T()
	now := time.Now()

	require.NoError(t, s.sut.CreateOrder(s.ctx, newOrder("order_A", now)))
	assert.Error(t, s.sut.CreateOrder(s.ctx, newOrder("order_A", now)))
}

func (s *OrderRepoTestSuite) TestFindMissing() {
	found, err := s.sut.FindById(s.ctx, "order_missing")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), found)
}

func (s *OrderRepoTestSuite) TestListRecentNewestFirst() {
	t := s.T()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.sut.CreateOrder(s.ctx, newOrder(fmt.Sprintf("order_%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	orders, err := s.sut.ListRecent(s.ctx, 10)
	require.NoError(t, err)
	require.Len(t, orders, 5)
	for i, o := range orders {
		assert.Equal(t, fmt.Sprintf("order_%d", 4-i), o.ID)
	}

	limited, err := s.sut.ListRecent(s.ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "order_4", limited[0].ID)
}

func (s *OrderRepoTestSuite) TestListRecentEmpty() {
	orders, err := s.sut.ListRecent(s.ctx, 10)
	assert.NoError(s.T(), err)
	assert.NotNil(s.T(), orders)
	assert.Empty(s.T(), orders)
}

func (s *OrderRepoTestSuite) TestSettleOrderOnce() {
	t := s.T()
	require.NoError(t, s.sut.CreateOrder(s.ctx, newOrder("order_A", time.Now())))

	at := time.Now()
	ok, err := s.sut.SettleOrder(s.ctx, "order_A", domain.OrderPaid, "pay_1", "sig_1", at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.sut.SettleOrder(s.ctx, "order_A", domain.OrderFailed, "pay_2", "sig_2", at)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := s.sut.FindById(s.ctx, "order_A")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, found.Status)
	require.NotNil(t, found.PaymentID)
	assert.Equal(t, "pay_1", *found.PaymentID)
	require.NotNil(t, found.Signature)
	assert.Equal(t, "sig_1", *found.Signature)
	require.NotNil(t, found.VerifiedAt)
	assert.WithinDuration(t, at, *found.VerifiedAt, time.Second)
}

func (s *OrderRepoTestSuite) TestSettleMissingOrder() {
	ok, err := s.sut.SettleOrder(s.ctx, "order_missing", domain.OrderPaid, "pay_1", "sig", time.Now())
	assert.NoError(s.T(), err)
	assert.False(s.T(), ok)

	orders, err := s.sut.ListRecent(s.ctx, 10)
	assert.NoError(s.T(), err)
	assert.Empty(s.T(), orders)
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func TestRebind(t *testing.T) {
	sqlite := &orderRepo{}
	pg := &orderRepo{numbered: true}

	q := `SELECT a FROM t WHERE b = ? AND c = ?`
	assert.Equal(t, q, sqlite.rebind(q))
	assert.Equal(t, `SELECT a FROM t WHERE b = $1 AND c = $2`, pg.rebind(q))
}
