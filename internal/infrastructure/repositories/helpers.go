package repositories

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "wrapchain.backend/internal/domain/errors"
)

var onConflictDoNothing = clause.OnConflict{DoNothing: true}

func addressKey(a common.Address) string {
	return a.Hex()
}

func parseAddress(s string) common.Address {
	if s == "" {
		return common.Address{}
	}
	return common.HexToAddress(s)
}

func optionalAddressKey(a common.Address) string {
	if a == (common.Address{}) {
		return ""
	}
	return a.Hex()
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.ErrNotFound
	}
	return err
}

// createOnce inserts value unless its primary key is already taken.
func createOnce(db *gorm.DB, value interface{}) error {
	res := db.Clauses(onConflictDoNothing).Create(value)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrAlreadyExists
	}
	return nil
}

// updateByID applies fields to the row with id, failing with ErrNotFound when
// no row matched.
func updateByID(db *gorm.DB, model interface{}, id string, fields map[string]interface{}) error {
	res := db.Model(model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
