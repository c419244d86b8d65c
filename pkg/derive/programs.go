package derive

import "github.com/ethereum/go-ethereum/common"

// Programs holds the owning program address of every record family.
type Programs struct {
	Members    common.Address
	Controller common.Address
	Factory    common.Address
	Token      common.Address
}

// DefaultPrograms returns the well-known program addresses.
func DefaultPrograms() Programs {
	return Programs{
		Members:    ProgramAddress(TagMembers),
		Controller: ProgramAddress(TagController),
		Factory:    ProgramAddress(TagFactory),
		Token:      ProgramAddress("token"),
	}
}

// MembersID is the registry record administered by admin.
func (p Programs) MembersID(admin common.Address) (common.Address, Proof) {
	return Address(p.Members, TagMembers, admin.Bytes())
}

// MerchantID is the merchant record of merchant inside registry.
func (p Programs) MerchantID(registry, merchant common.Address) (common.Address, Proof) {
	return Address(p.Members, TagMerchant, registry.Bytes(), merchant.Bytes())
}

func (p Programs) ControllerID(owner, token common.Address) (common.Address, Proof) {
	return Address(p.Controller, TagController, owner.Bytes(), token.Bytes())
}

func (p Programs) FactoryID(controller common.Address) (common.Address, Proof) {
	return Address(p.Factory, TagFactory, controller.Bytes())
}

func (p Programs) CustodianDepositID(factory, merchant common.Address) (common.Address, Proof) {
	return Address(p.Factory, TagCustodianDeposit, factory.Bytes(), merchant.Bytes())
}

func (p Programs) MerchantDepositID(factory, merchant common.Address) (common.Address, Proof) {
	return Address(p.Factory, TagMerchantDeposit, factory.Bytes(), merchant.Bytes())
}

// MintRequestID keys a mint request by its asset txid, so a txid can only be
// used once per factory.
func (p Programs) MintRequestID(factory common.Address, txid string) (common.Address, Proof) {
	return Address(p.Factory, TagMintRequest, factory.Bytes(), []byte(txid))
}

// BurnRequestID keys a burn request by its nonce.
func (p Programs) BurnRequestID(factory common.Address, nonce uint64) (common.Address, Proof) {
	return Address(p.Factory, TagBurnRequest, factory.Bytes(), Uint64(nonce))
}

// TokenAccountID is the account of owner for token.
func (p Programs) TokenAccountID(token, owner common.Address) (common.Address, Proof) {
	return Address(p.Token, TagTokenAccount, token.Bytes(), owner.Bytes())
}
