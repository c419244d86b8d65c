package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/pkg/jwt"
	"wrapchain.backend/pkg/logger"
	"wrapchain.backend/pkg/redis"
)

// ChallengeStore keeps one-time login challenges
type ChallengeStore interface {
	Issue(ctx context.Context, address string) (string, error)
	Consume(ctx context.Context, address string) (string, error)
}

// AuthUsecase authenticates principals by signed challenge
type AuthUsecase struct {
	challenges ChallengeStore
	jwtService *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(challenges ChallengeStore, jwtService *jwt.JWTService) *AuthUsecase {
	return &AuthUsecase{challenges: challenges, jwtService: jwtService}
}

// Challenge issues the message address must sign to log in
func (u *AuthUsecase) Challenge(ctx context.Context, address string) (string, error) {
	principal, err := parsePrincipal(address)
	if err != nil {
		return "", err
	}
	message, err := u.challenges.Issue(ctx, principal.Hex())
	if err != nil {
		return "", domainerrors.InternalError(err)
	}
	return message, nil
}

// Login verifies an EIP-191 signature over the pending challenge and issues tokens
func (u *AuthUsecase) Login(ctx context.Context, address, signature string) (*jwt.TokenPair, error) {
	principal, err := parsePrincipal(address)
	if err != nil {
		return nil, err
	}

	message, err := u.challenges.Consume(ctx, principal.Hex())
	if err != nil {
		if errors.Is(err, redis.ErrChallengeNotFound) {
			return nil, domainerrors.Unauthenticated("no pending challenge for address")
		}
		return nil, domainerrors.InternalError(err)
	}

	signer, err := recoverSigner(message, signature)
	if err != nil || signer != principal {
		return nil, domainerrors.Unauthenticated("signature does not match address")
	}

	pair, err := u.jwtService.GenerateTokenPair(principal)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "principal logged in", zap.String("principal", principal.Hex()))
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, domainerrors.Unauthenticated("invalid refresh token")
	}
	pair, err := u.jwtService.GenerateTokenPair(claims.PrincipalAddress())
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return pair, nil
}

func parsePrincipal(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, domainerrors.BadRequest("address must be a 20-byte hex address")
	}
	principal := common.HexToAddress(address)
	if isZero(principal) {
		return common.Address{}, domainerrors.BadRequest("address must not be zero")
	}
	return principal, nil
}

// recoverSigner returns the address that produced an EIP-191 personal
// signature over message.
func recoverSigner(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return common.Address{}, err
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errors.New("signature must be 65 bytes")
	}
	if sig[crypto.RecoveryIDOffset] >= legacyRecoveryOffset {
		sig[crypto.RecoveryIDOffset] -= legacyRecoveryOffset
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
