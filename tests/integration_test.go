package tests

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/velocar/velocar/internal/adapter/storage"
	"github.com/velocar/velocar/internal/core/domain"
	"github.com/velocar/velocar/internal/core/service"
)

// End-to-end tests over real MySQL and Redis, skipped when either is
// unreachable. Seeded rows use ids in the 9100/9200 range so they stay clear
// of both application data and the storage package's fixtures.

const (
	e2eUser    int64 = 9101
	e2eProduct int64 = 9201
	e2eEngine  int64 = 9211
)

type testEnv struct {
	redis     *redis.Client
	mysql     *sql.DB
	carts     *service.CartService
	checkouts *service.CheckoutService
	favorites *service.FavoriteService
	cleanup   func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/velocar?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	validator := service.NewRefValidator(storage.NewMySQLCatalog(db))
	cache := storage.NewRedisAdapter(rdb)

	return &testEnv{
		redis:     rdb,
		mysql:     db,
		carts:     service.NewCartService(validator, storage.NewMySQLCartStore(db)),
		checkouts: service.NewCheckoutService(validator, storage.NewMySQLOrderStore(db), cache),
		favorites: service.NewFavoriteService(validator, storage.NewMySQLFavoriteStore(db)),
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

func (env *testEnv) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	stmts := []string{
		`INSERT INTO users (id, username, password_hash) VALUES (?, 'e2e-user', '')
			ON DUPLICATE KEY UPDATE username = VALUES(username)`,
		`INSERT INTO products (id, name, base_price) VALUES (?, 'E2E M4 Coupe', 50000.00)
			ON DUPLICATE KEY UPDATE base_price = 50000.00`,
	}
	args := [][]any{{e2eUser}, {e2eProduct}}
	for i, stmt := range stmts {
		if _, err := env.mysql.ExecContext(ctx, stmt, args[i]...); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	if _, err := env.mysql.ExecContext(ctx, `
		INSERT INTO product_engines (id, product_id, name, price_modifier) VALUES (?, ?, 'E2E 3.0 TwinTurbo', 2500.00)
		ON DUPLICATE KEY UPDATE price_modifier = 2500.00`, e2eEngine, e2eProduct); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func (env *testEnv) reset(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	env.mysql.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?`, e2eUser)
	env.mysql.ExecContext(ctx, `
		DELETE oi FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.user_id = ?`, e2eUser)
	env.mysql.ExecContext(ctx, `DELETE FROM orders WHERE user_id = ?`, e2eUser)
	env.mysql.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ?`, e2eUser)
	env.redis.Del(ctx, "checkout:lock:9101")
}

func shipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName: "E2E Tester",
		Phone:    "+380501112233",
		Email:    "e2e@example.com",
		Address:  "1 Test St",
		City:     "Kyiv",
	}
}

func TestIntegration_CartToOrderFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seed(t)
	env.reset(t)

	ctx := context.Background()
	sel := domain.Selection{ProductID: e2eProduct, EngineID: e2eEngine}

	// Concurrent adds of the same configuration collapse into one line.
	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.carts.AddLine(ctx, e2eUser, sel, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("AddLine failed: %v", err)
	}

	views, err := env.carts.ListLines(ctx, e2eUser)
	if err != nil {
		t.Fatalf("ListLines failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(views))
	}
	if views[0].Quantity != workers {
		t.Errorf("expected quantity %d, got %d", workers, views[0].Quantity)
	}

	order, err := env.checkouts.Checkout(ctx, e2eUser, shipping(), uuid.NewString())
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	// 10 * (50000.00 + 2500.00)
	want, _ := decimal.NewFromString("525000.00")
	if !order.TotalPrice.Equal(want) {
		t.Errorf("expected total 525000.00, got %s", order.TotalPrice)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(order.Items))
	}

	views, err = env.carts.ListLines(ctx, e2eUser)
	if err != nil {
		t.Fatalf("ListLines failed: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("expected empty cart after checkout, got %d lines", len(views))
	}

	// A second checkout finds nothing to convert.
	_, err = env.checkouts.Checkout(ctx, e2eUser, shipping(), uuid.NewString())
	if !errors.Is(err, service.ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}

	env.reset(t)
}

func TestIntegration_DuplicateRequestRejected(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seed(t)
	env.reset(t)

	ctx := context.Background()
	requestID := "e2e-req-" + uuid.NewString()

	if _, err := env.carts.AddLine(ctx, e2eUser, domain.Selection{ProductID: e2eProduct}, 1); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}

	if _, err := env.checkouts.Checkout(ctx, e2eUser, shipping(), requestID); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	// Replaying the same request id must not create a second order, even
	// with items back in the cart.
	if _, err := env.carts.AddLine(ctx, e2eUser, domain.Selection{ProductID: e2eProduct}, 1); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	_, err := env.checkouts.Checkout(ctx, e2eUser, shipping(), requestID)
	if !errors.Is(err, service.ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest, got %v", err)
	}

	var count int
	env.mysql.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, e2eUser).Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 order, got %d", count)
	}

	env.redis.Del(ctx, "checkout:req:"+requestID)
	env.reset(t)
}

func TestIntegration_FailedCheckoutReleasesRequestID(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seed(t)
	env.reset(t)

	ctx := context.Background()
	requestID := "e2e-retry-" + uuid.NewString()

	// Empty cart: the checkout fails and the request id must stay usable.
	_, err := env.checkouts.Checkout(ctx, e2eUser, shipping(), requestID)
	if !errors.Is(err, service.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	if _, err := env.carts.AddLine(ctx, e2eUser, domain.Selection{ProductID: e2eProduct}, 1); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	order, err := env.checkouts.Checkout(ctx, e2eUser, shipping(), requestID)
	if err != nil {
		t.Fatalf("retry with same request id failed: %v", err)
	}
	if order == nil {
		t.Fatal("expected an order")
	}

	env.redis.Del(ctx, "checkout:req:"+requestID)
	env.reset(t)
}

func TestIntegration_FavoriteUniqueness(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seed(t)
	env.reset(t)

	ctx := context.Background()

	if _, err := env.favorites.Add(ctx, e2eUser, e2eProduct); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	_, err := env.favorites.Add(ctx, e2eUser, e2eProduct)
	if !errors.Is(err, service.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	list, err := env.favorites.List(ctx, e2eUser)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 favorite, got %d", len(list))
	}

	env.reset(t)
}
