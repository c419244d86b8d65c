package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"wrapchain.backend/internal/interfaces/http/middleware"
)

var testPrincipal = common.HexToAddress("0x00000000000000000000000000000000000000d1")

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(method, route, target, body string, authed bool, h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		if authed {
			c.Set(middleware.PrincipalKey, testPrincipal)
		}
		h(c)
	})

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlers_RequireAuthentication(t *testing.T) {
	members := NewMembersHandler(nil)
	controller := NewControllerHandler(nil)
	factory := NewFactoryHandler(nil)
	tokens := NewTokenHandler(nil)

	cases := []struct {
		name    string
		method  string
		route   string
		handler gin.HandlerFunc
	}{
		{"members initialize", http.MethodPost, "/members", members.Initialize},
		{"controller initialize", http.MethodPost, "/controllers", controller.Initialize},
		{"factory initialize", http.MethodPost, "/factories", factory.Initialize},
		{"create token", http.MethodPost, "/tokens", tokens.CreateToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(tc.method, tc.route, tc.route, `{}`, false, tc.handler)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
		})
	}
}

func TestHandlers_RejectMalformedAddresses(t *testing.T) {
	factory := NewFactoryHandler(nil)
	members := NewMembersHandler(nil)
	tokens := NewTokenHandler(nil)

	w := serve(http.MethodGet, "/factories/:id", "/factories/not-hex", "", true, factory.GetFactory)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "id must be a 20-byte hex address")

	w = serve(http.MethodPost, "/members/:id/merchants", "/members/0x01/merchants", `{"merchant":"0x00000000000000000000000000000000000000d1"}`, true, members.AddMerchant)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(http.MethodPost, "/tokens", "/tokens", `{"mintAuthority":"nope","decimals":8}`, true, tokens.CreateToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "mintAuthority")

	w = serve(http.MethodGet, "/factories/:id/requests", "/factories/0x00000000000000000000000000000000000000f1/requests?requester=zz", "", true, factory.ListRequests)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "requester")
}

func TestHandlers_RejectMalformedBodies(t *testing.T) {
	controller := NewControllerHandler(nil)
	auth := NewAuthHandler(nil)

	w := serve(http.MethodPost, "/controllers", "/controllers", `{"tokenId":`, true, controller.Initialize)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")

	w = serve(http.MethodPost, "/auth/login", "/auth/login", `{"address":"0x00000000000000000000000000000000000000d1"}`, false, auth.Login)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFactoryHandler_RejectsMalformedNonce(t *testing.T) {
	factory := NewFactoryHandler(nil)
	target := "/factories/0x00000000000000000000000000000000000000f1/burn-requests/-1"

	w := serve(http.MethodGet, "/factories/:id/burn-requests/:nonce", target, "", true, factory.GetBurnRequest)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "nonce must be an unsigned integer")
}

func TestPageQuery(t *testing.T) {
	var page, limit int
	serve(http.MethodGet, "/list", "/list?page=3&limit=abc", "", false, func(c *gin.Context) {
		page, limit = pageQuery(c)
	})
	assert.Equal(t, 3, page)
	assert.Equal(t, 0, limit)
}
