package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/maikolmontes/pymes-manager/internal/model"
	"github.com/maikolmontes/pymes-manager/internal/router"
	"github.com/maikolmontes/pymes-manager/pkg/config"
	"github.com/maikolmontes/pymes-manager/pkg/database"
	"github.com/maikolmontes/pymes-manager/pkg/jwtutil"
)

// testUploadDir holds the upload directory of the server under test so
// individual tests can inspect stored files.
var testUploadDir string

// setupServer builds an Echo instance with the full route table backed by
// a fresh in-memory database. Each test gets its own database; the shared
// cache keeps it alive across pooled connections.
func setupServer(t *testing.T) *echo.Echo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Business{}, &model.Favorite{}))
	database.DB = db

	testUploadDir = t.TempDir()
	cfg := &config.Config{
		Upload: config.UploadConfig{Dir: testUploadDir},
	}
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-secret-key", ExpirationHours: 1})

	e := echo.New()
	router.Register(e, cfg)
	return e
}

// doJSON performs a request with a JSON body against the test server
func doJSON(t *testing.T, e *echo.Echo, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// doMultipart performs a multipart form request, optionally attaching a
// file under fileField.
func doMultipart(t *testing.T, e *echo.Echo, method, target string, fields map[string]string, fileField, fileName string, fileContent []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON response body
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// registerUser creates a user through the API and returns the stored record
func registerUser(t *testing.T, e *echo.Echo, document, userType string) model.User {
	t.Helper()

	rec := doJSON(t, e, http.MethodPost, "/api/users/register", map[string]string{
		"name":      "Maria Lopez",
		"email":     fmt.Sprintf("user%s@example.com", document),
		"password":  "secret123",
		"document":  document,
		"phone":     "3001234567",
		"address":   "Calle 10 #4-21",
		"user_type": userType,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user model.User
	decode(t, rec, &user)
	return user
}

// createBusiness registers a business owned by userID through the API
func createBusiness(t *testing.T, e *echo.Echo, userID uint, name string) model.Business {
	t.Helper()

	rec := doMultipart(t, e, http.MethodPost, "/api/businesses", map[string]string{
		"name":        name,
		"category":    "Restaurante",
		"latitude":    "4.60971",
		"longitude":   "-74.08175",
		"description": "Comida tipica",
		"user_id":     fmt.Sprintf("%d", userID),
	}, "", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var business model.Business
	decode(t, rec, &business)
	return business
}
