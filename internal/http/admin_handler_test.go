package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminDashboard_RequiresLogin(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/admin-dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin-login", resp.Header.Get("Location"))

	page := decode[LoginPageResponseDTO](t, app.get(t, "/admin-login"))
	assert.False(t, page.Authenticated)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, FlashWarning, page.Messages[0].Level)

	resp = app.sendJSON(t, http.MethodGet, "/admin/products", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/admin-login", url.Values{"password": {"letmein"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin-login", resp.Header.Get("Location"))

	page := decode[LoginPageResponseDTO](t, app.get(t, "/admin-login"))
	assert.False(t, page.Authenticated)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "Incorrect password. Access denied.", page.Messages[0].Message)

	resp = app.sendJSON(t, http.MethodPost, "/admin-login", `{"password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", decode[ErrorResponse](t, resp).Code)
}

func TestAdminLogin_DashboardAndLogout(t *testing.T) {
	app := newTestApp(t)
	app.loginAdmin(t)

	resp := app.get(t, "/admin-dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := decode[DashboardResponseDTO](t, resp)
	assert.Equal(t, int64(12), dash.TotalProducts)
	assert.Len(t, dash.RecentProducts, 5)
	require.Len(t, dash.Messages, 1)
	assert.Equal(t, "Admin login successful!", dash.Messages[0].Message)

	resp = app.postForm(t, "/admin-logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = app.get(t, "/admin-dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestAdminProducts_CRUD(t *testing.T) {
	app := newTestApp(t)
	app.loginAdmin(t)

	resp := app.sendJSON(t, http.MethodPost, "/admin/products",
		`{"name":"Webcam HD","description":"1080p webcam","price":"45.50"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)
	assert.Equal(t, "45.50", created["price"])
	id := int64(created["id"].(float64))
	assert.Equal(t, int64(13), id)

	resp = app.sendJSON(t, http.MethodGet, "/admin/products?q=webcam", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[map[string][]map[string]any](t, resp)
	require.Len(t, list["products"], 1)

	resp = app.sendJSON(t, http.MethodPut, "/admin/products/13",
		`{"name":"Webcam 4K","description":"2160p webcam","price":79}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p, err := app.repo.GetProduct(t.Context(), 13)
	require.NoError(t, err)
	assert.Equal(t, "Webcam 4K", p.Name)
	assert.Equal(t, "79.00", p.Price.StringFixed(2))

	resp = app.sendJSON(t, http.MethodDelete, "/admin/products/13", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = app.sendJSON(t, http.MethodDelete, "/admin/products/13", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminProducts_Validation(t *testing.T) {
	app := newTestApp(t)
	app.loginAdmin(t)

	resp := app.sendJSON(t, http.MethodPost, "/admin/products", `{"name":"  ","price":"1.00"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_product", decode[ErrorResponse](t, resp).Code)

	resp = app.sendJSON(t, http.MethodPost, "/admin/products", `{"name":"Cable","price":"-3"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = app.sendJSON(t, http.MethodPost, "/admin/products", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", decode[ErrorResponse](t, resp).Code)

	resp = app.sendJSON(t, http.MethodPut, "/admin/products/abc", `{"name":"x","price":"1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
