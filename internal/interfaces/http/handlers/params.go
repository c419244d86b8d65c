package handlers

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/interfaces/http/middleware"
	"wrapchain.backend/internal/interfaces/http/response"
)

// caller returns the authenticated principal or writes 401.
func caller(c *gin.Context) (common.Address, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthenticated("authentication required"))
		return common.Address{}, false
	}
	return principal, true
}

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, domainerrors.BadRequest(field + " must be a 20-byte hex address")
	}
	return common.HexToAddress(value), nil
}

// addressParam reads a path parameter as an address or writes 400.
func addressParam(c *gin.Context, name string) (common.Address, bool) {
	addr, err := parseAddress(name, c.Param(name))
	if err != nil {
		response.Error(c, err)
		return common.Address{}, false
	}
	return addr, true
}

// addressField parses a JSON body field or writes 400.
func addressField(c *gin.Context, name, value string) (common.Address, bool) {
	addr, err := parseAddress(name, value)
	if err != nil {
		response.Error(c, err)
		return common.Address{}, false
	}
	return addr, true
}

// optionalAddress parses value when present.
func optionalAddress(c *gin.Context, name, value string) (*common.Address, bool) {
	if value == "" {
		return nil, true
	}
	addr, ok := addressField(c, name, value)
	if !ok {
		return nil, false
	}
	return &addr, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return false
	}
	return true
}

// pageQuery reads page and limit, ignoring malformed values.
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return page, limit
}
