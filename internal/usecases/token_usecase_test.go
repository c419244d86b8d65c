package usecases_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/usecases"
)

func TestTokenUsecase_CreateToken(t *testing.T) {
	h := newHarness(t, false)

	generated, err := h.tokens.CreateToken(h.ctx, ownerAddr, usecases.CreateTokenInput{Decimals: 8})
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, generated.ID)
	authority, _ := h.programs.ControllerID(ownerAddr, generated.ID)
	assert.Equal(t, authority, generated.MintAuthority)
	assert.Zero(t, generated.Supply)

	other, err := h.tokens.CreateToken(h.ctx, ownerAddr, usecases.CreateTokenInput{})
	require.NoError(t, err)
	assert.NotEqual(t, generated.ID, other.ID)

	id := tokenAddr
	explicit := strangerAddr
	token, err := h.tokens.CreateToken(h.ctx, ownerAddr, usecases.CreateTokenInput{ID: &id, MintAuthority: &explicit, Decimals: 6})
	require.NoError(t, err)
	assert.Equal(t, strangerAddr, token.MintAuthority)

	_, err = h.tokens.CreateToken(h.ctx, ownerAddr, usecases.CreateTokenInput{ID: &id})
	requireCode(t, err, domainerrors.CodeAlreadyExists)

	zero := common.Address{}
	_, err = h.tokens.CreateToken(h.ctx, ownerAddr, usecases.CreateTokenInput{ID: &zero})
	requireCode(t, err, domainerrors.CodeInvalidInput)

	got, err := h.tokens.GetToken(h.ctx, tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), got.Decimals)
	_, err = h.tokens.GetToken(h.ctx, common.HexToAddress("0xdead"))
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestTokenUsecase_OpenAccount(t *testing.T) {
	h := newHarness(t, false)
	id := tokenAddr
	_, err := h.tokens.CreateToken(h.ctx, ownerAddr, usecases.CreateTokenInput{ID: &id})
	require.NoError(t, err)

	account, err := h.tokens.OpenAccount(h.ctx, tokenAddr, merchantAddr)
	require.NoError(t, err)
	expected, _ := h.programs.TokenAccountID(tokenAddr, merchantAddr)
	assert.Equal(t, expected, account.ID)

	again, err := h.tokens.OpenAccount(h.ctx, tokenAddr, merchantAddr)
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
	assert.Zero(t, h.balance(t, merchantAddr))

	_, err = h.tokens.OpenAccount(h.ctx, tokenAddr, common.Address{})
	requireCode(t, err, domainerrors.CodeInvalidInput)
	_, err = h.tokens.OpenAccount(h.ctx, common.HexToAddress("0xdead"), merchantAddr)
	requireCode(t, err, domainerrors.CodeNotFound)
	_, err = h.tokens.GetAccount(h.ctx, tokenAddr, otherMerchant)
	requireCode(t, err, domainerrors.CodeNotFound)
}
