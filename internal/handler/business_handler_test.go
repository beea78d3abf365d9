package handler_test

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maikolmontes/pymes-manager/internal/model"
	"github.com/maikolmontes/pymes-manager/pkg/database"
)

func TestCreateBusiness_ParsesCoordinates(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2001", model.UserTypeEmprendedor)

	rec := doMultipart(t, e, http.MethodPost, "/api/businesses", map[string]string{
		"name":        "Panaderia El Trigal",
		"category":    "Panaderia",
		"latitude":    "4.60971",
		"longitude":   "-74.08175",
		"description": "Pan fresco",
		"user_id":     fmt.Sprintf("%d", owner.ID),
	}, "", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var business model.Business
	decode(t, rec, &business)
	assert.InDelta(t, 4.60971, business.Latitude, 1e-9)
	assert.InDelta(t, -74.08175, business.Longitude, 1e-9)
	assert.Equal(t, owner.ID, business.UserID)
	assert.Nil(t, business.ImageURL)
	assert.False(t, business.CreatedAt.IsZero())
}

func TestCreateBusiness_MissingFields(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2002", model.UserTypeEmprendedor)

	rec := doMultipart(t, e, http.MethodPost, "/api/businesses", map[string]string{
		"name":    "Sin Coordenadas",
		"user_id": fmt.Sprintf("%d", owner.ID),
	}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBusiness_MalformedCoordinates(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2003", model.UserTypeEmprendedor)

	for _, bad := range []string{"abc", "NaN", "+Inf"} {
		rec := doMultipart(t, e, http.MethodPost, "/api/businesses", map[string]string{
			"name":      "Coordenadas Malas",
			"category":  "Tienda",
			"latitude":  bad,
			"longitude": "-74.1",
			"user_id":   fmt.Sprintf("%d", owner.ID),
		}, "", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "latitude=%q", bad)
	}
}

func TestCreateBusiness_UnknownOwner(t *testing.T) {
	e := setupServer(t)

	rec := doMultipart(t, e, http.MethodPost, "/api/businesses", map[string]string{
		"name":      "Sin Dueno",
		"category":  "Tienda",
		"latitude":  "4.6",
		"longitude": "-74.1",
		"user_id":   "9999",
	}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBusiness_WithImage(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2004", model.UserTypeEmprendedor)

	rec := doMultipart(t, e, http.MethodPost, "/api/businesses", map[string]string{
		"name":      "Con Foto",
		"category":  "Cafeteria",
		"latitude":  "4.6",
		"longitude": "-74.1",
		"user_id":   fmt.Sprintf("%d", owner.ID),
	}, "image", "fachada.png", []byte("not-really-a-png"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var business model.Business
	decode(t, rec, &business)
	require.NotNil(t, business.ImageURL)
	assert.True(t, strings.HasPrefix(*business.ImageURL, "http://example.com/uploads/imagenesnegocios/"),
		"unexpected image url %q", *business.ImageURL)
	assert.True(t, strings.HasSuffix(*business.ImageURL, ".png"))

	// The file landed in the upload directory
	entries, err := os.ReadDir(testUploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListBusinesses(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2005", model.UserTypeEmprendedor)
	createBusiness(t, e, owner.ID, "Negocio Uno")
	createBusiness(t, e, owner.ID, "Negocio Dos")

	rec := doJSON(t, e, http.MethodGet, "/api/businesses", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var businesses []model.Business
	decode(t, rec, &businesses)
	assert.Len(t, businesses, 2)
}

func TestListBusinessesByOwner(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "123", model.UserTypeEmprendedor)
	other := registerUser(t, e, "124", model.UserTypeEmprendedor)
	created := createBusiness(t, e, owner.ID, "Tienda Dona Rosa")
	createBusiness(t, e, other.ID, "Otra Tienda")

	rec := doJSON(t, e, http.MethodGet, fmt.Sprintf("/api/businesses/my/%d", owner.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var businesses []model.Business
	decode(t, rec, &businesses)
	require.Len(t, businesses, 1)
	assert.Equal(t, created.Name, businesses[0].Name)
	assert.Equal(t, created.ID, businesses[0].ID)
}

func TestListBusinessesByOwner_EmptyIsNot404(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2006", model.UserTypeEmprendedor)

	rec := doJSON(t, e, http.MethodGet, fmt.Sprintf("/api/businesses/my/%d", owner.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUpdateBusiness_PartialKeepsOmittedFields(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2007", model.UserTypeEmprendedor)
	created := createBusiness(t, e, owner.ID, "Nombre Original")

	rec := doMultipart(t, e, http.MethodPut, fmt.Sprintf("/api/businesses/%d", created.ID), map[string]string{
		"name": "Nombre Nuevo",
	}, "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated model.Business
	decode(t, rec, &updated)
	// Supplied field changed, omitted fields kept their prior values
	assert.Equal(t, "Nombre Nuevo", updated.Name)
	assert.Equal(t, created.Category, updated.Category)
	assert.Equal(t, created.Description, updated.Description)
	assert.InDelta(t, created.Latitude, updated.Latitude, 1e-9)
	assert.InDelta(t, created.Longitude, updated.Longitude, 1e-9)

	var stored model.Business
	require.NoError(t, database.GetDB().First(&stored, created.ID).Error)
	assert.Equal(t, "Nombre Nuevo", stored.Name)
	assert.Equal(t, created.Description, stored.Description)
}

func TestUpdateBusiness_PresentEmptyFieldClears(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2008", model.UserTypeEmprendedor)
	created := createBusiness(t, e, owner.ID, "Con Descripcion")

	rec := doMultipart(t, e, http.MethodPut, fmt.Sprintf("/api/businesses/%d", created.ID), map[string]string{
		"description": "",
	}, "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.Business
	decode(t, rec, &updated)
	assert.Empty(t, updated.Description)
	assert.Equal(t, created.Name, updated.Name)
}

func TestUpdateBusiness_MalformedCoordinate(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2009", model.UserTypeEmprendedor)
	created := createBusiness(t, e, owner.ID, "Coordenada Mala")

	rec := doMultipart(t, e, http.MethodPut, fmt.Sprintf("/api/businesses/%d", created.ID), map[string]string{
		"latitude": "NaN",
	}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateBusiness_NotFound(t *testing.T) {
	e := setupServer(t)

	rec := doMultipart(t, e, http.MethodPut, "/api/businesses/4242", map[string]string{
		"name": "No Existe",
	}, "", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBusiness_CascadesFavorites(t *testing.T) {
	e := setupServer(t)
	owner := registerUser(t, e, "2010", model.UserTypeEmprendedor)
	cliente := registerUser(t, e, "2011", model.UserTypeCliente)
	created := createBusiness(t, e, owner.ID, "Para Borrar")

	rec := doJSON(t, e, http.MethodPost, "/api/favorites", map[string]uint{
		"user_id":     cliente.ID,
		"business_id": created.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/api/businesses/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The business and its favorites are gone
	var count int64
	require.NoError(t, database.GetDB().Model(&model.Business{}).Where("id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, database.GetDB().Model(&model.Favorite{}).Where("business_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)

	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/api/businesses/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBusiness_NotFound(t *testing.T) {
	e := setupServer(t)

	rec := doJSON(t, e, http.MethodDelete, "/api/businesses/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
