package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var principal = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", "wrapchain", time.Minute, 2*time.Minute)

	pair, err := svc.GenerateTokenPair(principal)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(60), pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.PrincipalAddress())
	assert.Equal(t, "wrapchain", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	refresh, err := svc.ValidateToken(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, principal, refresh.PrincipalAddress())
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("secret", "", time.Minute, 2*time.Minute)

	pair, err := svc.GenerateTokenPair(principal)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ValidateToken(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateInvalidToken(t *testing.T) {
	svc := NewJWTService("secret", "", time.Minute, 2*time.Minute)

	_, err := svc.ValidateToken("not-a-token", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTService("other-secret", "", time.Minute, time.Minute)
	pair, err := other.GenerateTokenPair(principal)
	require.NoError(t, err)
	_, err = svc.ValidateToken(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateWrongIssuer(t *testing.T) {
	issuerA := NewJWTService("secret", "a", time.Minute, time.Minute)
	issuerB := NewJWTService("secret", "b", time.Minute, time.Minute)

	pair, err := issuerA.GenerateTokenPair(principal)
	require.NoError(t, err)
	_, err = issuerB.ValidateToken(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("secret", "", -time.Second, -time.Second)

	pair, err := svc.GenerateTokenPair(principal)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateWrongSigningMethod(t *testing.T) {
	svc := NewJWTService("secret", "", time.Minute, 2*time.Minute)

	claims := gjwt.MapClaims{
		"principal": principal.Hex(),
		"typ":       TokenTypeAccess,
		"exp":       time.Now().Add(time.Minute).Unix(),
		"iat":       time.Now().Unix(),
		"nbf":       time.Now().Unix(),
	}
	unsigned := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims)
	tokenStr, err := unsigned.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenStr, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_MalformedPrincipal(t *testing.T) {
	svc := NewJWTService("secret", "", time.Minute, time.Minute)

	token := gjwt.NewWithClaims(gjwt.SigningMethodHS256, &Claims{
		Principal: "alice",
		TokenType: TokenTypeAccess,
		RegisteredClaims: gjwt.RegisteredClaims{
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	tokenStr, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenStr, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_SignFailure(t *testing.T) {
	orig := signJWTToken
	t.Cleanup(func() { signJWTToken = orig })
	signJWTToken = func(*gjwt.Token, []byte) (string, error) {
		return "", errors.New("sign failed")
	}

	svc := NewJWTService("secret", "", time.Minute, time.Minute)
	_, err := svc.GenerateTokenPair(principal)
	assert.Error(t, err)
}
