package usecases_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"wrapchain.backend/internal/domain/entities"
	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/infrastructure/ledger"
	"wrapchain.backend/internal/infrastructure/models"
	"wrapchain.backend/internal/infrastructure/repositories"
	"wrapchain.backend/internal/usecases"
	"wrapchain.backend/pkg/derive"
	"wrapchain.backend/pkg/redis"
)

var (
	adminAddr     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	ownerAddr     = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	custodianAddr = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	merchantAddr  = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	otherMerchant = common.HexToAddress("0x00000000000000000000000000000000000000d2")
	strangerAddr  = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	tokenAddr     = common.HexToAddress("0x00000000000000000000000000000000000000f1")
)

const custodyAddress = "bc1qcustodian"

type harness struct {
	ctx        context.Context
	db         *gorm.DB
	srv        *miniredis.Miniredis
	locker     *redis.RecordLocker
	programs   derive.Programs
	ledger     *ledger.TokenLedger
	requests   *repositories.RequestRepositoryImpl
	members    *usecases.MembersUsecase
	controller *usecases.ControllerUsecase
	factory    *usecases.FactoryUsecase
	tokens     *usecases.TokenUsecase

	membersID    common.Address
	controllerID common.Address
	factoryID    common.Address
}

func newHarness(t *testing.T, strictCancel bool) *harness {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	prev := redis.GetClient()
	redis.SetClient(client)
	t.Cleanup(func() { redis.SetClient(prev) })

	locker := redis.NewRecordLocker(30 * time.Second)
	uow := repositories.NewUnitOfWork(db, locker)
	programs := derive.DefaultPrograms()

	membersRepo := repositories.NewMembersRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	controllerRepo := repositories.NewControllerRepository(db)
	factoryRepo := repositories.NewFactoryRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	tokenLedger := ledger.NewTokenLedger(db)

	controller := usecases.NewControllerUsecase(uow, controllerRepo, membersRepo, factoryRepo, tokenLedger, programs)

	return &harness{
		ctx:        context.Background(),
		db:         db,
		srv:        srv,
		locker:     locker,
		programs:   programs,
		ledger:     tokenLedger,
		requests:   requestRepo,
		members:    usecases.NewMembersUsecase(uow, membersRepo, merchantRepo, programs),
		controller: controller,
		factory: usecases.NewFactoryUsecase(usecases.FactoryDeps{
			UnitOfWork:     uow,
			FactoryRepo:    factoryRepo,
			DepositRepo:    repositories.NewDepositAddressRepository(db),
			RequestRepo:    requestRepo,
			ControllerRepo: controllerRepo,
			MembersRepo:    membersRepo,
			MerchantRepo:   merchantRepo,
			Ledger:         tokenLedger,
			Controller:     controller,
			Programs:       programs,
			StrictCancel:   strictCancel,
		}),
		tokens: usecases.NewTokenUsecase(uow, tokenLedger, programs),
	}
}

// deploy wires token, controller, registry and factory the way an operator
// would, admits merchantAddr and opens its token account.
func (h *harness) deploy(t *testing.T) {
	t.Helper()
	ctx := h.ctx

	id := tokenAddr
	_, err := h.tokens.CreateToken(ctx, ownerAddr, usecases.CreateTokenInput{ID: &id, Decimals: 8})
	require.NoError(t, err)

	controller, err := h.controller.Initialize(ctx, ownerAddr, tokenAddr)
	require.NoError(t, err)
	h.controllerID = controller.ID

	members, err := h.members.Initialize(ctx, adminAddr)
	require.NoError(t, err)
	h.membersID = members.ID

	_, err = h.members.SetCustodian(ctx, adminAddr, h.membersID, custodianAddr)
	require.NoError(t, err)
	_, err = h.controller.SetMembers(ctx, ownerAddr, h.controllerID, h.membersID)
	require.NoError(t, err)

	factory, err := h.factory.Initialize(ctx, ownerAddr, h.controllerID, adminAddr)
	require.NoError(t, err)
	h.factoryID = factory.ID

	_, err = h.controller.SetFactory(ctx, ownerAddr, h.controllerID, h.factoryID)
	require.NoError(t, err)

	h.admit(t, merchantAddr)
}

func (h *harness) admit(t *testing.T, merchant common.Address) {
	t.Helper()
	_, err := h.members.AddMerchant(h.ctx, adminAddr, h.membersID, merchant)
	require.NoError(t, err)
	_, err = h.tokens.OpenAccount(h.ctx, tokenAddr, merchant)
	require.NoError(t, err)
	_, err = h.factory.SetCustodianDepositAddress(h.ctx, custodianAddr, h.factoryID, merchant, custodyAddress)
	require.NoError(t, err)
}

func (h *harness) balance(t *testing.T, owner common.Address) uint64 {
	t.Helper()
	account, err := h.tokens.GetAccount(h.ctx, tokenAddr, owner)
	require.NoError(t, err)
	return account.Balance
}

func (h *harness) supply(t *testing.T) uint64 {
	t.Helper()
	token, err := h.tokens.GetToken(h.ctx, tokenAddr)
	require.NoError(t, err)
	return token.Supply
}

func (h *harness) mint(t *testing.T, txid string, amount uint64) *entities.Request {
	t.Helper()
	req, err := h.factory.AddMintRequest(h.ctx, merchantAddr, h.factoryID, txid, custodyAddress, amount)
	require.NoError(t, err)
	_, err = h.factory.ConfirmMintRequest(h.ctx, adminAddr, h.factoryID, txid)
	require.NoError(t, err)
	return req
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, "message: %s", appErr.Message)
}
