// Package service implements the storefront core: the cart store,
// the catalog queries, pricing and the simulated checkout.
package service

import (
	"fmt"
	"strings"
)

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}
