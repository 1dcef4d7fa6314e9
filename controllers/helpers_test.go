package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/kds"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/qr"
	"github.com/yeremiapane/orderin/router"
	"github.com/yeremiapane/orderin/services"
	"github.com/yeremiapane/orderin/store"
	"github.com/yeremiapane/orderin/utils"
)

type testApp struct {
	router   *gin.Engine
	selector *database.Selector
	menus    *store.MenuStore
	orders   *store.OrderStore
	tables   *store.TableStore
	hub      *kds.Hub
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	utils.SetLevel("error")
}

// setupApp membangun router lengkap di atas SQLite in-memory.
func setupApp(t *testing.T, opts ...qr.Option) *testApp {
	t.Helper()
	sel := database.NewSelector(database.SelectorConfig{
		Driver:      "sqlite",
		DSN:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		FallbackDir: t.TempDir(),
	})
	require.Equal(t, database.ModePrimary, sel.Mode(), "probe error: %v", sel.ProbeError())

	gen := qr.NewGenerator("https://orderin.test", opts...)
	app := &testApp{
		selector: sel,
		menus:    store.NewMenuStore(sel.Backend(database.CollectionMenuItems)),
		orders:   store.NewOrderStore(sel.Backend(database.CollectionOrders), store.WithRetryDelay(0)),
		tables:   store.NewTableStore(sel.Backend(database.CollectionTables), gen, store.WithRetryDelay(0)),
		hub:      kds.NewHub(),
	}

	auth, err := services.NewAuthService(
		services.Credential{Username: "admin", PIN: "1234", Role: models.RoleAdmin},
		services.Credential{Username: "staff", PIN: "1234", Role: models.RoleStaff},
		services.Credential{Username: "kitchen", PIN: "1234", Role: models.RoleKitchen},
	)
	require.NoError(t, err)

	app.router = router.SetupRouter(router.Deps{
		Selector: sel,
		Menus:    app.menus,
		Orders:   app.orders,
		Tables:   app.tables,
		Auth:     auth,
		Hub:      app.hub,
	})
	return app
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T, username string) string {
	t.Helper()
	w := a.request(t, http.MethodPost, "/login", "", map[string]string{"username": username, "pin": "1234"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	decode(t, w, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp
}
