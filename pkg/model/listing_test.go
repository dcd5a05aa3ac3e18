package model_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

const (
	testOwner = "0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d"
)

func setupSampleListing() *model.Listing {
	return model.NewListing(&model.NewListingParams{
		Key:           model.ListingKeyFromName("test_listing"),
		Name:          "test_listing",
		Owner:         common.HexToAddress(testOwner),
		Deposit:       big.NewInt(100),
		Status:        model.ListingStatusApplied,
		AppliedAt:     1257894000,
		LastUpdatedAt: 1257894000,
	})
}

func TestListingKeyFromName(t *testing.T) {
	key := model.ListingKeyFromName("DemoListing")
	if string(key[:11]) != "DemoListing" {
		t.Errorf("Short names should be right padded: %v", key.Hex())
	}
	for _, b := range key[11:] {
		if b != 0 {
			t.Errorf("Padding should be zeros: %v", key.Hex())
			break
		}
	}

	long := strings.Repeat("a", 33)
	if model.ListingKeyFromName(long) != crypto.Keccak256Hash([]byte(long)) {
		t.Errorf("Long names should be hashed")
	}
	exact := strings.Repeat("b", 32)
	if string(model.ListingKeyFromName(exact).Bytes()) != exact {
		t.Errorf("32 byte names should be used as is")
	}
}

func TestListingStatus(t *testing.T) {
	if model.ListingStatusChallenged.String() != "challenged" {
		t.Errorf("Wrong status name: %v", model.ListingStatusChallenged)
	}
	if model.ListingStatus(99).String() != "unknown" {
		t.Errorf("Unknown statuses should be named unknown")
	}
	terminal := []model.ListingStatus{model.ListingStatusNone, model.ListingStatusRejected,
		model.ListingStatusRemoved}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Errorf("Should be terminal: %v", status)
		}
	}
	live := []model.ListingStatus{model.ListingStatusApplied, model.ListingStatusWhitelisted,
		model.ListingStatusChallenged}
	for _, status := range live {
		if status.IsTerminal() {
			t.Errorf("Should not be terminal: %v", status)
		}
	}
}

func TestApplyStageEnded(t *testing.T) {
	listing := setupSampleListing()
	if listing.ApplyStageEnded(100, 1257894099) {
		t.Errorf("Apply stage should not have ended")
	}
	if !listing.ApplyStageEnded(100, 1257894100) {
		t.Errorf("Apply stage should end at exactly appliedAt + length")
	}
}

func TestListingCopy(t *testing.T) {
	listing := setupSampleListing()
	cp := listing.Copy()
	cp.SetDeposit(big.NewInt(0))
	cp.SetStatus(model.ListingStatusRejected)
	cp.SetWhitelisted(true)
	if listing.Deposit().Int64() != 100 {
		t.Errorf("Copy should not share the deposit: %v", listing.Deposit())
	}
	if listing.Status() != model.ListingStatusApplied || listing.Whitelisted() {
		t.Errorf("Copy should not change the original")
	}
}
