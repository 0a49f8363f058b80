// Package integration exercises the storefront API end to end: real
// services and repositories over an in-memory sqlite database, with the
// mail transport and payment gateway replaced by recording fakes.
package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	paymentapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	domainpayment "github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/storefront/backend/tests/testutil"
)

// CaptureSender records verification mail instead of delivering it, so
// tests can read the OTP and link token the way a customer would.
type CaptureSender struct {
	mu sync.Mutex

	LastEmail string
	LastOTP   string
	LastToken string
	Sent      int
}

func (s *CaptureSender) SendVerificationEmail(_ context.Context, toAddress, _, otpCode, verificationToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastEmail = toAddress
	s.LastOTP = otpCode
	s.LastToken = verificationToken
	s.Sent++
	return nil
}

var _ identity.EmailSender = (*CaptureSender)(nil)

// Signatures the FakeGateway treats as authentic.
const (
	GoodSignature        = "valid-signature"
	GoodWebhookSignature = "valid-webhook-signature"
)

// FakeGateway is an in-process stand-in for the hosted payment
// provider. Sessions get deterministic ids; the reported status of a
// payment id defaults to captured and can be overridden per test.
type FakeGateway struct {
	mu sync.Mutex

	sessions int
	statuses map[string]string
	methods  map[string]string
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		statuses: make(map[string]string),
		methods:  make(map[string]string),
	}
}

// SetPaymentStatus fixes what FetchPaymentDetails reports for one
// payment id.
func (g *FakeGateway) SetPaymentStatus(paymentID, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[paymentID] = status
}

func (g *FakeGateway) CreateSession(_ context.Context, _ domainpayment.SessionRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions++
	return fmt.Sprintf("order_fake%06d", g.sessions), nil
}

func (g *FakeGateway) FetchPaymentDetails(_ context.Context, paymentID string) (*domainpayment.PaymentDetails, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status, ok := g.statuses[paymentID]
	if !ok {
		status = "captured"
	}
	method := g.methods[paymentID]
	if method == "" {
		method = "upi"
	}
	return &domainpayment.PaymentDetails{
		PaymentID:   paymentID,
		Status:      status,
		Method:      method,
		Currency:    "INR",
		RawResponse: fmt.Sprintf(`{"id":%q,"status":%q}`, paymentID, status),
	}, nil
}

func (g *FakeGateway) VerifySignature(_, _, signature string) bool {
	return signature == GoodSignature
}

func (g *FakeGateway) VerifyWebhookSignature(_ []byte, signature string) bool {
	return signature == GoodWebhookSignature
}

func (g *FakeGateway) KeyID() string {
	return "rzp_test_fake"
}

var _ domainpayment.Gateway = (*FakeGateway)(nil)

// TestServer wires the full application against sqlite and exposes the
// fakes for assertions.
type TestServer struct {
	Engine  *gin.Engine
	DB      *gorm.DB
	Sender  *CaptureSender
	Gateway *FakeGateway
}

// NewTestServer builds a fully wired engine over a fresh in-memory
// database. Each call is an isolated storefront.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&identity.User{},
		&identity.Admin{},
		&identity.VerificationLog{},
		&catalog.Category{},
		&catalog.Product{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&domainpayment.Payment{},
		&domainpayment.PaymentLog{},
		&domainpayment.WebhookEvent{},
	))

	log := zap.NewNop()
	sender := &CaptureSender{}
	gateway := NewFakeGateway()

	productRepo := persistence.NewGormProductRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	cartRepo := persistence.NewGormCartRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	paymentLogRepo := persistence.NewGormPaymentLogRepository(db)
	webhookEventRepo := persistence.NewGormWebhookEventRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	adminRepo := persistence.NewGormAdminRepository(db)
	verificationLogRepo := persistence.NewGormVerificationLogRepository(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "integration-test-secret-0123456789",
		AccessTokenExpiration: time.Hour,
		Issuer:                "storefront-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	verificationService := identityapp.NewVerificationService(userRepo, verificationLogRepo, sender, log)
	authService := identityapp.NewAuthService(userRepo, adminRepo, verificationService, jwtService, blacklist, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	imageService := catalogapp.NewImageService(productRepo, storage.NewStubImageStore(), log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, log)
	checkoutService, err := orderapp.NewCheckoutService(orderRepo, cartRepo, productRepo, config.CheckoutConfig{
		TaxRate:     "0.08",
		ShippingFee: "10.00",
	}, log)
	require.NoError(t, err)
	orderService := orderapp.NewOrderService(orderRepo, productRepo, nil, log)
	paymentService := paymentapp.NewPaymentService(paymentRepo, paymentLogRepo, orderRepo, gateway, checkoutService, log)
	webhookService := paymentapp.NewWebhookService(webhookEventRepo, paymentRepo, paymentService, gateway, log)

	engine := router.New(router.DefaultConfig(), router.Dependencies{
		JWTService: jwtService,
		Blacklist:  blacklist,
		Logger:     log,
	}, router.Handlers{
		System:   handler.NewSystemHandler(db),
		Auth:     handler.NewAuthHandler(authService, verificationService),
		Product:  handler.NewProductHandler(productService, imageService),
		Category: handler.NewCategoryHandler(categoryService),
		Cart:     handler.NewCartHandler(cartService),
		Order:    handler.NewOrderHandler(checkoutService, orderService),
		Payment:  handler.NewPaymentHandler(paymentService, webhookService),
	})

	return &TestServer{
		Engine:  engine,
		DB:      db,
		Sender:  sender,
		Gateway: gateway,
	}
}

// RegisterAndLogin walks a customer through registration, OTP
// verification and login, returning the access token.
func (ts *TestServer) RegisterAndLogin(t *testing.T, username, email, password string) string {
	t.Helper()

	rec := testutil.PerformRequest(t, ts.Engine, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"username":   username,
		"email":      email,
		"password":   password,
		"first_name": "Test",
		"last_name":  "Customer",
	}, nil)
	testutil.RequireStatus(t, rec, http.StatusCreated)

	rec = testutil.PerformRequest(t, ts.Engine, http.MethodPost, "/api/v1/auth/verify-otp", map[string]interface{}{
		"email": email,
		"code":  ts.Sender.LastOTP,
	}, nil)
	testutil.RequireStatus(t, rec, http.StatusOK)

	return ts.Login(t, username, password)
}

// Login logs a verified customer in and returns the access token.
func (ts *TestServer) Login(t *testing.T, username, password string) string {
	t.Helper()

	rec := testutil.PerformRequest(t, ts.Engine, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"username": username,
		"password": password,
	}, nil)
	testutil.RequireStatus(t, rec, http.StatusOK)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	testutil.DecodeData(t, rec, &login)
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

// AdminToken seeds a back-office account and logs it in.
func (ts *TestServer) AdminToken(t *testing.T) string {
	t.Helper()

	admin, err := identity.NewAdmin("backoffice", "admin@example.com", "admin-password-1", "Back Office")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormAdminRepository(ts.DB).Create(context.Background(), admin))

	rec := testutil.PerformRequest(t, ts.Engine, http.MethodPost, "/api/v1/auth/admin/login", map[string]interface{}{
		"username": "backoffice",
		"password": "admin-password-1",
	}, nil)
	testutil.RequireStatus(t, rec, http.StatusOK)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	testutil.DecodeData(t, rec, &login)
	return login.AccessToken
}

// CreateProduct creates a product through the back office API and
// returns its id.
func (ts *TestServer) CreateProduct(t *testing.T, adminToken, name, price string, stock int) string {
	t.Helper()

	rec := testutil.PerformRequest(t, ts.Engine, http.MethodPost, "/api/v1/admin/products", map[string]interface{}{
		"name":           name,
		"description":    "integration test product",
		"price":          price,
		"stock_quantity": stock,
	}, testutil.BearerHeader(adminToken))
	testutil.RequireStatus(t, rec, http.StatusCreated)

	var product struct {
		ID string `json:"id"`
	}
	testutil.DecodeData(t, rec, &product)
	require.NotEmpty(t, product.ID)
	return product.ID
}
