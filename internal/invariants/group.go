// Package invariants derives numeric and display invariants of a modular
// curve from the fields of its stored record. Every function is pure.
package invariants

import (
	"fmt"
	"math/big"
	"modcurves/pkg/domain"
)

// PrimeDivisors returns the distinct primes dividing n in ascending order.
func PrimeDivisors(n int) []int {
	var primes []int
	for p := 2; p*p <= n; p++ {
		if n%p != 0 {
			continue
		}
		primes = append(primes, p)
		for n%p == 0 {
			n /= p
		}
	}
	if n > 1 {
		primes = append(primes, n)
	}
	return primes
}

// IsPrime reports whether n is prime.
func IsPrime(n int) bool {
	ps := PrimeDivisors(n)
	return n > 1 && len(ps) == 1 && ps[0] == n
}

// IsPrimePower reports whether n = p^k for a prime p and k >= 1.
func IsPrimePower(n int) bool {
	return n > 1 && len(PrimeDivisors(n)) == 1
}

// EulerPhi is Euler's totient of n.
func EulerPhi(n int) *big.Int {
	phi := big.NewInt(int64(n))
	for _, p := range PrimeDivisors(n) {
		bp := big.NewInt(int64(p))
		phi.Div(phi, bp)
		phi.Mul(phi, bp.Sub(bp, big.NewInt(1)))
	}
	return phi
}

// GL2Order is |GL2(Z/N)| = phi(N) * N * (N/rad(N))^2 * prod_{p|N} (p^2 - 1).
func GL2Order(n int) (*big.Int, error) {
	if n < 1 {
		return nil, fmt.Errorf("gl2 order: level must be positive, got %d", n)
	}
	primes := PrimeDivisors(n)
	rad := 1
	for _, p := range primes {
		rad *= p
	}
	bn := big.NewInt(int64(n))
	q := big.NewInt(int64(n / rad))
	order := EulerPhi(n)
	order.Mul(order, bn)
	order.Mul(order, q.Mul(q, q))
	for _, p := range primes {
		order.Mul(order, big.NewInt(int64(p*p-1)))
	}
	return order, nil
}

// FullTorsionFieldDegree is |GL2(Z/N)| / index. The index must divide the
// group order exactly; otherwise a DataConsistencyError is returned.
func FullTorsionFieldDegree(rec domain.CurveRecord) (*big.Int, error) {
	return fullTorsionFieldDegree(rec.Label, rec.Level, rec.Index)
}

func fullTorsionFieldDegree(lbl string, level, index int) (*big.Int, error) {
	if index < 1 {
		return nil, &domain.DataConsistencyError{Label: lbl, Field: "index", Detail: fmt.Sprintf("index %d is not positive", index)}
	}
	order, err := GL2Order(level)
	if err != nil {
		return nil, &domain.DataConsistencyError{Label: lbl, Field: "level", Detail: err.Error()}
	}
	quo, rem := new(big.Int).QuoRem(order, big.NewInt(int64(index)), new(big.Int))
	if rem.Sign() != 0 {
		return nil, &domain.DataConsistencyError{
			Label:  lbl,
			Field:  "index",
			Detail: fmt.Sprintf("index %d does not divide |GL2(Z/%d)| = %s", index, level, order),
		}
	}
	return quo, nil
}
