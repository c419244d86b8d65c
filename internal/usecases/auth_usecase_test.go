package usecases_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/usecases"
	"wrapchain.backend/pkg/jwt"
	"wrapchain.backend/pkg/redis"
)

type failingChallenges struct{}

func (failingChallenges) Issue(context.Context, string) (string, error) {
	return "", errors.New("redis down")
}

func (failingChallenges) Consume(context.Context, string) (string, error) {
	return "", errors.New("redis down")
}

func newAuth(t *testing.T) (*usecases.AuthUsecase, *jwt.JWTService) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	prev := redis.GetClient()
	redis.SetClient(client)
	t.Cleanup(func() { redis.SetClient(prev) })

	jwtService := jwt.NewJWTService("test-secret", "wrapchain", 15*time.Minute, time.Hour)
	return usecases.NewAuthUsecase(redis.NewChallengeStore(time.Minute), jwtService), jwtService
}

func sign(t *testing.T, key *ecdsa.PrivateKey, message string, legacyV bool) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	if legacyV {
		sig[crypto.RecoveryIDOffset] += 27
	}
	return hexutil.Encode(sig)
}

func TestAuthUsecase_LoginWithSignedChallenge(t *testing.T) {
	for _, legacyV := range []bool{false, true} {
		auth, jwtService := newAuth(t)
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		address := crypto.PubkeyToAddress(key.PublicKey)

		message, err := auth.Challenge(context.Background(), address.Hex())
		require.NoError(t, err)
		assert.Contains(t, message, address.Hex())

		pair, err := auth.Login(context.Background(), address.Hex(), sign(t, key, message, legacyV))
		require.NoError(t, err)

		claims, err := jwtService.ValidateToken(pair.AccessToken, jwt.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, address, claims.PrincipalAddress())
	}
}

func TestAuthUsecase_LoginRejections(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	impostor, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	_, err = auth.Login(ctx, address.Hex(), "0x00")
	requireCode(t, err, domainerrors.CodeUnauthenticated)

	message, err := auth.Challenge(ctx, address.Hex())
	require.NoError(t, err)
	_, err = auth.Login(ctx, address.Hex(), sign(t, impostor, message, false))
	requireCode(t, err, domainerrors.CodeUnauthenticated)

	// the challenge was consumed by the failed attempt
	_, err = auth.Login(ctx, address.Hex(), sign(t, key, message, false))
	requireCode(t, err, domainerrors.CodeUnauthenticated)

	_, err = auth.Challenge(ctx, address.Hex())
	require.NoError(t, err)
	_, err = auth.Login(ctx, address.Hex(), "not-hex")
	requireCode(t, err, domainerrors.CodeUnauthenticated)

	_, err = auth.Challenge(ctx, "0x1234")
	requireCode(t, err, domainerrors.CodeInvalidInput)
	_, err = auth.Challenge(ctx, "0x0000000000000000000000000000000000000000")
	requireCode(t, err, domainerrors.CodeInvalidInput)
}

func TestAuthUsecase_Refresh(t *testing.T) {
	auth, jwtService := newAuth(t)
	ctx := context.Background()

	pair, err := jwtService.GenerateTokenPair(merchantAddr)
	require.NoError(t, err)

	refreshed, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(refreshed.AccessToken, jwt.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, merchantAddr, claims.PrincipalAddress())

	_, err = auth.Refresh(ctx, pair.AccessToken)
	requireCode(t, err, domainerrors.CodeUnauthenticated)
	_, err = auth.Refresh(ctx, "garbage")
	requireCode(t, err, domainerrors.CodeUnauthenticated)
}

func TestAuthUsecase_StoreFailure(t *testing.T) {
	auth := usecases.NewAuthUsecase(failingChallenges{}, jwt.NewJWTService("s", "", time.Minute, time.Hour))

	_, err := auth.Challenge(context.Background(), merchantAddr.Hex())
	requireCode(t, err, domainerrors.CodeInternalError)
	_, err = auth.Login(context.Background(), merchantAddr.Hex(), "0x")
	requireCode(t, err, domainerrors.CodeInternalError)
}
