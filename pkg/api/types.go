package api // import "github.com/joincivil/civil-tcr-registry/pkg/api"

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
	"github.com/joincivil/civil-tcr-registry/pkg/registry"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ProposeRequest is the body of a new listing application
type ProposeRequest struct {
	From    string                `json:"from"`
	Name    string                `json:"name"`
	Deposit *math.HexOrDecimal256 `json:"deposit"`
}

// ChallengeRequest is the body of a new challenge
type ChallengeRequest struct {
	From    string                `json:"from"`
	Deposit *math.HexOrDecimal256 `json:"deposit"`
}

// VoteRequest is the body of a vote
type VoteRequest struct {
	From  string                `json:"from"`
	Stake *math.HexOrDecimal256 `json:"stake"`
	Keep  bool                  `json:"keep"`
}

// CallerRequest is the body of operations that only need a caller
type CallerRequest struct {
	From string `json:"from"`
}

// Listing is the json representation of a listing
type Listing struct {
	Key           string `json:"key"`
	Name          string `json:"name"`
	Owner         string `json:"owner"`
	Deposit       string `json:"deposit"`
	Status        string `json:"status"`
	Whitelisted   bool   `json:"whitelisted"`
	ChallengeID   uint64 `json:"challengeID"`
	AppliedAt     int64  `json:"appliedAt"`
	LastUpdatedAt int64  `json:"lastUpdatedAt"`
}

func convertListing(l *model.Listing) *Listing {
	return &Listing{
		Key:           l.Key().Hex(),
		Name:          l.Name(),
		Owner:         l.Owner().Hex(),
		Deposit:       l.Deposit().String(),
		Status:        l.Status().String(),
		Whitelisted:   l.Whitelisted(),
		ChallengeID:   l.ChallengeID(),
		AppliedAt:     l.AppliedAt(),
		LastUpdatedAt: l.LastUpdatedAt(),
	}
}

// Challenge is the json representation of a challenge
type Challenge struct {
	ID            uint64 `json:"id"`
	ListingKey    string `json:"listingKey"`
	Challenger    string `json:"challenger"`
	Deposit       string `json:"deposit"`
	StartedAt     int64  `json:"startedAt"`
	CommitEndDate int64  `json:"commitEndDate"`
	Resolved      bool   `json:"resolved"`
	Outcome       string `json:"outcome"`
	KeepWeight    string `json:"keepWeight"`
	RemoveWeight  string `json:"removeWeight"`
	RewardPool    string `json:"rewardPool"`
	ResolvedAt    int64  `json:"resolvedAt"`
}

func convertChallenge(c *model.Challenge) *Challenge {
	return &Challenge{
		ID:            c.ID(),
		ListingKey:    c.ListingKey().Hex(),
		Challenger:    c.Challenger().Hex(),
		Deposit:       c.Deposit().String(),
		StartedAt:     c.StartedAt(),
		CommitEndDate: c.CommitEndDate(),
		Resolved:      c.Resolved(),
		Outcome:       c.Outcome().String(),
		KeepWeight:    c.KeepWeight().String(),
		RemoveWeight:  c.RemoveWeight().String(),
		RewardPool:    c.RewardPool().String(),
		ResolvedAt:    c.ResolvedAt(),
	}
}

// Config is the json representation of the registry config
type Config struct {
	Name              string `json:"name"`
	MinDeposit        string `json:"minDeposit"`
	ApplyStageLength  int64  `json:"applyStageLength"`
	CommitStageLength int64  `json:"commitStageLength"`
}

func convertConfig(c *registry.Config) *Config {
	return &Config{
		Name:              c.Name,
		MinDeposit:        c.MinDeposit.String(),
		ApplyStageLength:  c.ApplyStageLength,
		CommitStageLength: c.CommitStageLength,
	}
}

// parseListingKey accepts a 0x prefixed 32 byte hex key or a listing name
func parseListingKey(s string) (common.Hash, error) {
	if strings.HasPrefix(s, "0x") && len(s) == 2+2*common.HashLength {
		b, err := hexutil.Decode(s)
		if err != nil {
			return common.Hash{}, errors.WithMessage(err, "key")
		}
		return common.BytesToHash(b), nil
	}
	if s == "" {
		return common.Hash{}, errors.New("key: empty")
	}
	return model.ListingKeyFromName(s), nil
}

func parseCaller(from string) (common.Address, error) {
	if !common.IsHexAddress(from) {
		return common.Address{}, errors.Errorf("from: invalid address '%v'", from)
	}
	return common.HexToAddress(from), nil
}

func amount(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}
