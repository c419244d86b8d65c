package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"wrapchain.backend/internal/config"
	"wrapchain.backend/internal/domain/entities"
	domainerrors "wrapchain.backend/internal/domain/errors"
	pgsource "wrapchain.backend/internal/infrastructure/datasources/postgres"
	"wrapchain.backend/internal/infrastructure/repositories"
	"wrapchain.backend/internal/usecases"
	"wrapchain.backend/pkg/jwt"
)

var openIssueTokenDB = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == config.DriverSQLite {
		return gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	}
	conn, err := pgsource.NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{PrepareStmt: false, TranslateError: true})
}

var openIssueTokenSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

// registryReader resolves the role a principal holds in a registry.
type registryReader interface {
	GetRegistry(ctx context.Context, membersID common.Address) (*entities.MembersState, error)
	GetMerchant(ctx context.Context, membersID, merchant common.Address) (*entities.Merchant, error)
}

type issueTokenDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (registryReader, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultIssueTokenDeps() issueTokenDeps {
	return issueTokenDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (registryReader, io.Closer, error) {
			programs, err := cfg.Programs.Resolve()
			if err != nil {
				return nil, nil, err
			}
			db, err := openIssueTokenDB(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			sqlDB, err := openIssueTokenSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}

			members := usecases.NewMembersUsecase(
				repositories.NewUnitOfWork(db, nil),
				repositories.NewMembersRepository(db),
				repositories.NewMerchantRepository(db),
				programs,
			)
			return members, sqlDB, nil
		},
		out: os.Stdout,
	}
}

func parsePrincipal(value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, errors.New("--principal is required")
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid principal %q", value)
	}
	return common.HexToAddress(value), nil
}

// resolveRole reports how principal participates in the registry.
func resolveRole(ctx context.Context, reader registryReader, membersID, principal common.Address) (string, error) {
	registry, err := reader.GetRegistry(ctx, membersID)
	if err != nil {
		return "", fmt.Errorf("failed to load registry %s: %w", membersID.Hex(), err)
	}
	switch {
	case registry.Admin == principal:
		return "admin", nil
	case registry.HasCustodian() && registry.Custodian == principal:
		return "custodian", nil
	}

	merchant, err := reader.GetMerchant(ctx, membersID, principal)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", fmt.Errorf("%s holds no role in registry %s", principal.Hex(), membersID.Hex())
		}
		return "", fmt.Errorf("failed to load merchant: %w", err)
	}
	if !merchant.Active {
		return "", fmt.Errorf("merchant %s is not active", principal.Hex())
	}
	return "merchant", nil
}

func runIssueToken(args []string, deps issueTokenDeps) error {
	def := defaultIssueTokenDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	principalFlag := fs.String("principal", "", "principal address to issue tokens for (required)")
	membersFlag := fs.String("members", "", "registry id the principal must hold a role in (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	principal, err := parsePrincipal(*principalFlag)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()

	role := "unchecked"
	if *membersFlag != "" {
		if !common.IsHexAddress(*membersFlag) {
			return fmt.Errorf("invalid members id %q", *membersFlag)
		}
		reader, closer, err := deps.prepare(cfg)
		if err != nil {
			return err
		}
		if closer == nil {
			closer = nopCloser{}
		}
		defer closer.Close()

		role, err = resolveRole(context.Background(), reader, common.HexToAddress(*membersFlag), principal)
		if err != nil {
			return err
		}
	}

	service := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	pair, err := service.GenerateTokenPair(principal)
	if err != nil {
		return fmt.Errorf("failed issuing tokens: %w", err)
	}

	_, _ = fmt.Fprintf(deps.out, "principal=%s\n", principal.Hex())
	_, _ = fmt.Fprintf(deps.out, "role=%s\n", role)
	_, _ = fmt.Fprintf(deps.out, "expires_in=%d\n", pair.ExpiresIn)
	_, _ = fmt.Fprintf(deps.out, "ACCESS_TOKEN=%s\n", pair.AccessToken)
	_, _ = fmt.Fprintf(deps.out, "REFRESH_TOKEN=%s\n", pair.RefreshToken)
	return nil
}

func main() {
	if err := runIssueToken(os.Args[1:], defaultIssueTokenDeps()); err != nil {
		log.Fatal(err)
	}
}
