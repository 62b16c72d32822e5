package chain

import (
	"math/big"
	"testing"
)

func TestToWei(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "0"},
		{1, "1000000000000000000"},
		{6.6, "6600000000000000000"},
		{5.5, "5500000000000000000"},
		{0.01, "10000000000000000"},
		{123.45, "123450000000000000000"},
	}

	for _, tc := range cases {
		want, ok := new(big.Int).SetString(tc.want, 10)
		if !ok {
			t.Fatalf("bad fixture %q", tc.want)
		}
		if got := ToWei(tc.amount); got.Cmp(want) != 0 {
			t.Errorf("ToWei(%v) = %s, want %s", tc.amount, got, want)
		}
	}
}

func TestTokenABIParses(t *testing.T) {
	parsed, err := TokenABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	for _, method := range []string{"redeem", "mint", "balanceOf", "totalSupply", "name", "symbol", "decimals", "owner"} {
		if _, ok := parsed.Methods[method]; !ok {
			t.Errorf("abi missing method %s", method)
		}
	}
	if _, ok := parsed.Events["TokensRedeemed"]; !ok {
		t.Errorf("abi missing TokensRedeemed event")
	}
}
