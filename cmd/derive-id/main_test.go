package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"wrapchain.backend/internal/config"
	"wrapchain.backend/pkg/derive"
)

const (
	ownerHex = "0x00000000000000000000000000000000000000b1"
	tokenHex = "0x00000000000000000000000000000000000000f1"
)

func withConfig(t *testing.T, programs config.ProgramsConfig) {
	t.Helper()
	origDotenv, origCfg := loadDotenv, loadCfg
	t.Cleanup(func() {
		loadDotenv, loadCfg = origDotenv, origCfg
	})
	loadDotenv = func(...string) error { return nil }
	loadCfg = func() *config.Config { return &config.Config{Programs: programs} }
}

func TestRun_Controller(t *testing.T) {
	withConfig(t, config.ProgramsConfig{})

	var out bytes.Buffer
	if err := run([]string{"-kind", "controller", ownerHex, tokenHex}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, proof := derive.DefaultPrograms().ControllerID(common.HexToAddress(ownerHex), common.HexToAddress(tokenHex))
	if !strings.Contains(out.String(), "id="+id.Hex()) {
		t.Fatalf("missing id in output: %s", out.String())
	}
	if !strings.Contains(out.String(), "proof="+proof.Hex()) {
		t.Fatalf("missing proof in output: %s", out.String())
	}
}

func TestRun_BurnRequest(t *testing.T) {
	withConfig(t, config.ProgramsConfig{})

	var out bytes.Buffer
	if err := run([]string{"-kind", "burn-request", tokenHex, "7"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, _ := derive.DefaultPrograms().BurnRequestID(common.HexToAddress(tokenHex), 7)
	if !strings.Contains(out.String(), id.Hex()) {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestRun_HonoursProgramOverrides(t *testing.T) {
	program := "0x0000000000000000000000000000000000000abc"
	withConfig(t, config.ProgramsConfig{Factory: program})

	var out bytes.Buffer
	if err := run([]string{"-kind", "mint-request", tokenHex, "tx-1"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	programs := derive.DefaultPrograms()
	programs.Factory = common.HexToAddress(program)
	id, _ := programs.MintRequestID(common.HexToAddress(tokenHex), "tx-1")
	if !strings.Contains(out.String(), id.Hex()) {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	withConfig(t, config.ProgramsConfig{})

	cases := [][]string{
		{"-kind", "unknown"},
		{"-kind", "members"},
		{"-kind", "members", "not-hex"},
		{"-kind", "mint-request", tokenHex, ""},
		{"-kind", "burn-request", tokenHex, "-3"},
		{"-bogus"},
	}
	for _, args := range cases {
		var out bytes.Buffer
		if err := run(args, &out); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestRun_InvalidProgramConfig(t *testing.T) {
	withConfig(t, config.ProgramsConfig{Members: "zz"})

	var out bytes.Buffer
	if err := run([]string{"-kind", "members", ownerHex}, &out); err == nil {
		t.Fatal("expected program configuration error")
	}
}

func TestMain_PrintsID(t *testing.T) {
	withConfig(t, config.ProgramsConfig{})
	origOut, origFatal := stdout, fatalfFn
	origArgs := os.Args
	t.Cleanup(func() {
		stdout, fatalfFn = origOut, origFatal
		os.Args = origArgs
	})

	var out bytes.Buffer
	stdout = &out
	fatalfFn = func(format string, args ...interface{}) { t.Fatalf(format, args...) }
	os.Args = []string{"derive-id", "-kind", "members", ownerHex}

	main()

	if !strings.HasPrefix(out.String(), "id=0x") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
