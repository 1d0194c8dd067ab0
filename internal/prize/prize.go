// Package prize splits a session prize pool across the top three ranks.
package prize

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNegativePool = errors.New("negative_prize_pool")

var (
	FirstShare  = decimal.RequireFromString("0.60")
	SecondShare = decimal.RequireFromString("0.25")
	ThirdShare  = decimal.RequireFromString("0.15")
)

type Split struct {
	First  decimal.Decimal `json:"first"`
	Second decimal.Decimal `json:"second"`
	Third  decimal.Decimal `json:"third"`
}

// Amounts returns the split in rank order.
func (s Split) Amounts() []decimal.Decimal {
	return []decimal.Decimal{s.First, s.Second, s.Third}
}

type Winner struct {
	WalletAddress string
	Username      string
	Score         int64
}

type Award struct {
	Rank          int             `json:"rank"`
	WalletAddress string          `json:"wallet_address"`
	Username      string          `json:"username"`
	Score         int64           `json:"score"`
	Amount        decimal.Decimal `json:"amount"`
}

func Distribute(pool decimal.Decimal) (Split, error) {
	if pool.IsNegative() {
		return Split{}, ErrNegativePool
	}
	return Split{
		First:  pool.Mul(FirstShare),
		Second: pool.Mul(SecondShare),
		Third:  pool.Mul(ThirdShare),
	}, nil
}

// Allocate pairs the split with up to three winners, already in rank order.
// Shares for missing ranks stay unallocated.
func Allocate(pool decimal.Decimal, winners []Winner) ([]Award, error) {
	split, err := Distribute(pool)
	if err != nil {
		return nil, err
	}
	amounts := split.Amounts()
	n := len(winners)
	if n > len(amounts) {
		n = len(amounts)
	}
	out := make([]Award, 0, n)
	for i := 0; i < n; i++ {
		w := winners[i]
		out = append(out, Award{
			Rank:          i + 1,
			WalletAddress: w.WalletAddress,
			Username:      w.Username,
			Score:         w.Score,
			Amount:        amounts[i],
		})
	}
	return out, nil
}
