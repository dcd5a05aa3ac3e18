package registry

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/ledger"
	"github.com/joincivil/civil-tcr-registry/pkg/model"
	"github.com/joincivil/civil-tcr-registry/pkg/persistence"
)

func TestLockStripeSpreadsPaddedNames(t *testing.T) {
	used := map[int]bool{}
	for i := 0; i < 2000; i++ {
		stripe := lockStripe(model.ListingKeyFromName(fmt.Sprintf("listing-%v", i)))
		if stripe < 0 || stripe >= lockStripes {
			t.Fatalf("Stripe out of range: %v", stripe)
		}
		used[stripe] = true
	}
	if len(used) < lockStripes/2 {
		t.Errorf("Keys should spread over the stripes: %v used", len(used))
	}
}

func TestUnknownKeysUseStripes(t *testing.T) {
	escrow := common.HexToAddress("0x0000000000000000000000000000000000e5c70")
	reg, err := NewRegistry(&Config{
		Name:              "TestRegistry",
		MinDeposit:        big.NewInt(100),
		ApplyStageLength:  100,
		CommitStageLength: 60,
	}, persistence.NewMemoryPersister(), ledger.NewMemoryLedger(escrow))
	if err != nil {
		t.Fatalf("Should have created registry: err: %v", err)
	}
	for i := 0; i < 1000; i++ {
		key := model.ListingKeyFromName(fmt.Sprintf("missing-%v", i))
		err = reg.UpdateStatus(key, 1000)
		if err != ErrNotFound {
			t.Errorf("Should have returned not found: err: %v", err)
		}
	}
}

func TestKeysSharingAStripe(t *testing.T) {
	escrow := common.HexToAddress("0x0000000000000000000000000000000000e5c70")
	owner := common.HexToAddress("0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d")
	l := ledger.NewMemoryLedger(escrow)
	_ = l.Mint(owner, big.NewInt(1000))
	_ = l.Approve(owner, escrow, big.NewInt(1000))
	reg, err := NewRegistry(&Config{
		Name:              "TestRegistry",
		MinDeposit:        big.NewInt(100),
		ApplyStageLength:  100,
		CommitStageLength: 60,
	}, persistence.NewMemoryPersister(), l)
	if err != nil {
		t.Fatalf("Should have created registry: err: %v", err)
	}

	first := model.ListingKeyFromName("listing-0")
	var second common.Hash
	for i := 1; ; i++ {
		second = model.ListingKeyFromName(fmt.Sprintf("listing-%v", i))
		if lockStripe(second) == lockStripe(first) {
			break
		}
	}
	for _, key := range []common.Hash{first, second} {
		err = reg.Propose(owner, key, big.NewInt(100), "", 1000)
		if err != nil {
			t.Fatalf("Should have proposed: err: %v", err)
		}
	}
	promoted, err := reg.PromoteElapsedApplications(1100)
	if err != nil || promoted != 2 {
		t.Errorf("Should have promoted both listings: %v, err: %v", promoted, err)
	}
}
