package infrastructure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	catalogadapters "go-storefront/internal/catalog/adapters"
	catalogapp "go-storefront/internal/catalog/application"
	cataloginfra "go-storefront/internal/catalog/infrastructure"
	"go-storefront/internal/orders/adapters"
	"go-storefront/internal/orders/application"
	"go-storefront/pkg/auth"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	verifier *auth.Verifier
	useCase  *application.OrderUseCase
	admin    auth.Identity
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	log := logger.NewNop()
	products := catalogadapters.NewPostgresProductRepository(db)
	require.NoError(t, products.Migrate())
	store := adapters.NewPostgresOrderStore(db)
	require.NoError(t, store.Migrate())

	useCase := application.NewOrderUseCase(store, nil, nil, log, application.Options{MaxAttempts: 3})
	verifier := auth.NewVerifier("test-secret", "storefront")

	router := gin.New()
	router.Use(middleware.TraceID(), middleware.ErrorHandler(log))
	authenticate := middleware.Authenticate(verifier)
	NewHTTPHandler(useCase).RegisterRoutes(&router.RouterGroup, authenticate)
	cataloginfra.NewHTTPHandler(catalogapp.NewProductUseCase(products, log)).RegisterRoutes(&router.RouterGroup, authenticate)

	return &testServer{
		t:        t,
		router:   router,
		verifier: verifier,
		useCase:  useCase,
		admin:    auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin},
	}
}

func (s *testServer) token(identity auth.Identity) string {
	s.t.Helper()
	token, err := s.verifier.Issue(identity, time.Hour)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path string, identity *auth.Identity, body interface{}, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if identity != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(*identity))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// product creates a product through the catalog API and returns its id
func (s *testServer) product(name string, price float64, stock int) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/products", &s.admin, map[string]interface{}{
		"name":          name,
		"price":         price,
		"stockQuantity": stock,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ProductID string `json:"productId"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ProductID
}

func (s *testServer) stock(productID string) int {
	s.t.Helper()
	rec := s.do(http.MethodGet, "/products/"+productID, nil, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		StockQuantity int `json:"stockQuantity"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.StockQuantity
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
