package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"expensedash/internal/handlers"
	"expensedash/internal/logger"
	"expensedash/internal/middleware"
	"expensedash/internal/models"
	"expensedash/internal/services"
	"expensedash/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Mailer *codeMailer
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// codeMailer records the last verification code sent to each address.
type codeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func newCodeMailer() *codeMailer {
	return &codeMailer{codes: make(map[string]string)}
}

func (m *codeMailer) SendCode(to, subject, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *codeMailer) codeFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Category{},
		&models.SubCategory{},
		&models.ExpenseRecord{},
		&models.VerificationCode{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	mail := newCodeMailer()

	// Services
	userService := services.NewUserService(db, mail)
	categoryService := services.NewCategoryService(db)
	subCategoryService := services.NewSubCategoryService(db)
	recordService := services.NewRecordService(db)
	dashboardService := services.NewDashboardService(db, 500, 7)
	importService := services.NewImportService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	subCategoryHandler := handlers.NewSubCategoryHandler(subCategoryService)
	recordHandler := handlers.NewRecordHandler(recordService, importService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/verify-code", authHandler.VerifyCode)
	auth.POST("/login", authHandler.Login)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/auth/me", authHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/all", categoryHandler.GetCategoryTree)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	subCategories := protected.Group("/sub-categories")
	subCategories.POST("", subCategoryHandler.CreateSubCategory)
	subCategories.GET("", subCategoryHandler.GetUserSubCategories)
	subCategories.GET("/:id", subCategoryHandler.GetSubCategoryByID)
	subCategories.PUT("/:id", subCategoryHandler.UpdateSubCategory)
	subCategories.DELETE("/:id", subCategoryHandler.DeleteSubCategory)

	records := protected.Group("/records")
	records.POST("", recordHandler.CreateRecord)
	records.POST("/bulk", recordHandler.BulkImport)
	records.GET("", recordHandler.GetUserRecords)
	records.GET("/:id", recordHandler.GetRecordByID)
	records.PUT("/:id", recordHandler.UpdateRecord)
	records.DELETE("/:id", recordHandler.DeleteRecord)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("", dashboardHandler.GetCardSummary)
	dashboard.GET("/bar-chart", dashboardHandler.GetBarChart)
	dashboard.GET("/pie-chart", dashboardHandler.GetPieChart)

	return &testApp{DB: db, Router: router, Mailer: mail}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode digs the error code out of an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser walks the register + verify-code flow and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	code := app.Mailer.codeFor(email)
	if code == "" {
		t.Fatalf("no verification code mailed to %s", email)
	}

	body = fmt.Sprintf(`{"email":%q,"code":%q}`, email, code)
	rec = app.request("POST", "/api/v1/auth/verify-code", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("verify-code failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string)
}

// createCategory creates a category and returns its ID.
func (app *testApp) createCategory(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/categories",
		fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	category := parseJSON(t, rec)["category"].(map[string]interface{})
	return category["id"].(string)
}

// createSubCategory creates a sub-category under the given category and returns its ID.
func (app *testApp) createSubCategory(t *testing.T, token, name, categoryID string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/sub-categories",
		fmt.Sprintf(`{"name":%q,"category_id":%q}`, name, categoryID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sub-category failed: %d %s", rec.Code, rec.Body.String())
	}
	sub := parseJSON(t, rec)["sub_category"].(map[string]interface{})
	return sub["id"].(string)
}

// createRecord creates an expense record and returns its ID.
func (app *testApp) createRecord(t *testing.T, token string, amount float64, date, categoryID, subCategoryID string) string {
	t.Helper()
	body := fmt.Sprintf(`{"expense_date":%q,"amount":%v,"currency":"USD","category_id":%q,"sub_category_id":%q}`,
		date, amount, categoryID, subCategoryID)
	rec := app.request("POST", "/api/v1/records", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create record failed: %d %s", rec.Code, rec.Body.String())
	}
	record := parseJSON(t, rec)["record"].(map[string]interface{})
	return record["id"].(string)
}
