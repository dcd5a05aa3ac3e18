// Package reward contains the payout arithmetic for resolved challenges
package reward // import "github.com/joincivil/civil-tcr-registry/pkg/reward"

import (
	"math/big"
)

// Share returns floor(pool * weight / winningWeight). Returns 0 when there is
// no winning weight.
func Share(pool *big.Int, weight *big.Int, winningWeight *big.Int) *big.Int {
	if winningWeight == nil || winningWeight.Sign() <= 0 || pool == nil || weight == nil {
		return new(big.Int)
	}
	share := new(big.Int).Mul(pool, weight)
	return share.Quo(share, winningWeight)
}

// Payout returns what a winning voter receives: the staked weight back plus
// its share of the pool
func Payout(pool *big.Int, weight *big.Int, winningWeight *big.Int) *big.Int {
	payout := Share(pool, weight, winningWeight)
	return payout.Add(payout, weight)
}

// Dust returns the part of the pool left undistributed after every winner
// claimed. It stays in escrow and is bounded by len(weights) - 1, so by
// winningWeight - 1.
func Dust(pool *big.Int, weights []*big.Int) *big.Int {
	winningWeight := new(big.Int)
	for _, w := range weights {
		winningWeight.Add(winningWeight, w)
	}
	if winningWeight.Sign() == 0 {
		return new(big.Int).Set(pool)
	}
	dust := new(big.Int).Set(pool)
	for _, w := range weights {
		dust.Sub(dust, Share(pool, w, winningWeight))
	}
	return dust
}
