package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"wrapchain.backend/internal/config"
	"wrapchain.backend/pkg/derive"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	fatalfFn   = log.Fatalf
	stdout     io.Writer = os.Stdout
)

type deriveFn func(p derive.Programs, args []string) (common.Address, derive.Proof, error)

// kinds maps each record family to its derivation and the positional inputs it takes.
var kinds = map[string]struct {
	usage  string
	derive deriveFn
}{
	"members": {"<admin>", func(p derive.Programs, a []string) (common.Address, derive.Proof, error) {
		return withAddresses(a, 1, func(x []common.Address) (common.Address, derive.Proof) { return p.MembersID(x[0]) })
	}},
	"merchant": {"<registry> <merchant>", func(p derive.Programs, a []string) (common.Address, derive.Proof, error) {
		return withAddresses(a, 2, func(x []common.Address) (common.Address, derive.Proof) { return p.MerchantID(x[0], x[1]) })
	}},
	"controller": {"<owner> <token>", func(p derive.Programs, a []string) (common.Address, derive.Proof, error) {
		return withAddresses(a, 2, func(x []common.Address) (common.Address, derive.Proof) { return p.ControllerID(x[0], x[1]) })
	}},
	"factory": {"<controller>", func(p derive.Programs, a []string) (common.Address, derive.Proof, error) {
		return withAddresses(a, 1, func(x []common.Address) (common.Address, derive.Proof) { return p.FactoryID(x[0]) })
	}},
	"custodian-deposit": {"<factory> <merchant>", func(p derive.Programs, a []string) (common.Address, derive.Proof, error) {
		return withAddresses(a, 2, func(x []common.Address) (common.Address, derive.Proof) { return p.CustodianDepositID(x[0], x[1]) })
	}},
	"merchant-deposit": {"<factory> <merchant>", func(p derive.Programs, a []string) (common.Address, derive.Proof, error) {
		return withAddresses(a, 2, func(x []common.Address) (common.Address, derive.Proof) { return p.MerchantDepositID(x[0], x[1]) })
	}},
	"token-account": {"<token> <owner>", func(p derive.Programs, a []string) (common.Address, derive.Proof, error) {
		return withAddresses(a, 2, func(x []common.Address) (common.Address, derive.Proof) { return p.TokenAccountID(x[0], x[1]) })
	}},
	"mint-request": {"<factory> <txid>", func(p derive.Programs, a []string) (common.Address, derive.Proof, error) {
		if len(a) != 2 || a[1] == "" {
			return common.Address{}, derive.Proof{}, errors.New("expected a factory and a non-empty txid")
		}
		factory, err := parseAddress(a[0])
		if err != nil {
			return common.Address{}, derive.Proof{}, err
		}
		id, proof := p.MintRequestID(factory, a[1])
		return id, proof, nil
	}},
	"burn-request": {"<factory> <nonce>", func(p derive.Programs, a []string) (common.Address, derive.Proof, error) {
		if len(a) != 2 {
			return common.Address{}, derive.Proof{}, errors.New("expected a factory and a nonce")
		}
		factory, err := parseAddress(a[0])
		if err != nil {
			return common.Address{}, derive.Proof{}, err
		}
		nonce, err := strconv.ParseUint(a[1], 10, 64)
		if err != nil {
			return common.Address{}, derive.Proof{}, fmt.Errorf("invalid nonce %q", a[1])
		}
		id, proof := p.BurnRequestID(factory, nonce)
		return id, proof, nil
	}},
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", s)
	}
	return common.HexToAddress(s), nil
}

func withAddresses(args []string, n int, fn func([]common.Address) (common.Address, derive.Proof)) (common.Address, derive.Proof, error) {
	if len(args) != n {
		return common.Address{}, derive.Proof{}, fmt.Errorf("expected %d addresses, got %d", n, len(args))
	}
	addrs := make([]common.Address, n)
	for i, a := range args {
		addr, err := parseAddress(a)
		if err != nil {
			return common.Address{}, derive.Proof{}, err
		}
		addrs[i] = addr
	}
	id, proof := fn(addrs)
	return id, proof, nil
}

// run prints the record id and proof derived from args under the configured programs.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("derive-id", flag.ContinueOnError)
	fs.SetOutput(out)
	kind := fs.String("kind", "", "record family: members, merchant, controller, factory, custodian-deposit, merchant-deposit, token-account, mint-request, burn-request")
	if err := fs.Parse(args); err != nil {
		return err
	}

	k, ok := kinds[*kind]
	if !ok {
		return fmt.Errorf("unknown kind %q", *kind)
	}

	_ = loadDotenv()
	programs, err := loadCfg().Programs.Resolve()
	if err != nil {
		return err
	}

	id, proof, err := k.derive(programs, fs.Args())
	if err != nil {
		return fmt.Errorf("usage: derive-id -kind %s %s: %w", *kind, k.usage, err)
	}

	_, _ = fmt.Fprintf(out, "id=%s\n", id.Hex())
	_, _ = fmt.Fprintf(out, "proof=%s\n", proof.Hex())
	return nil
}

func main() {
	if err := run(os.Args[1:], stdout); err != nil {
		fatalfFn("derive-id: %v", err)
	}
}
