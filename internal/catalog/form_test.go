package catalog_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"MiniCatalog/internal/catalog"
)

func TestCheckPrice(t *testing.T) {
	cases := map[string]bool{
		"9.99":          true,
		"-4.20":         true,
		"1e1000":        true,
		"1e-1000":       true,
		"1e1001":        false,
		"1e-1001":       false,
		"1e2000000000":  false,
		"1e-2000000000": false,
	}

	for in, ok := range cases {
		err := catalog.CheckPrice(decimal.RequireFromString(in))
		if ok && err != nil {
			t.Fatalf("CheckPrice(%s)=%v want nil", in, err)
		}
		if !ok && !errors.Is(err, catalog.ErrPriceTooLarge) {
			t.Fatalf("CheckPrice(%s)=%v want ErrPriceTooLarge", in, err)
		}
	}
}
