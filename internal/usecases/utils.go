package usecases

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/pkg/utils"
)

// nowUnix is the clock stamped on requests.
var nowUnix = func() uint64 {
	return uint64(time.Now().Unix())
}

var nowTime = time.Now

// checkAmount rejects zero and anything the record store cannot hold as a
// signed 64-bit integer.
func checkAmount(amount uint64) error {
	if amount == 0 {
		return domainerrors.BadRequest("amount must be positive")
	}
	if amount > math.MaxInt64 {
		return domainerrors.BadRequest("amount exceeds the maximum supply")
	}
	return nil
}

// mapStoreErr turns record store sentinels into client errors. AppErrors pass
// through untouched.
func mapStoreErr(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *domainerrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound(what + " not found")
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		return domainerrors.AlreadyExists(what + " already exists")
	}
	return domainerrors.InternalError(err)
}

func isZero(a common.Address) bool {
	return a == common.Address{}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// pageParams clamps paging input to the listing defaults.
func pageParams(page, limit int) utils.PaginationParams {
	return utils.GetPaginationParams(page, limit).Clamp(DefaultPageLimit, MaxPageLimit)
}
