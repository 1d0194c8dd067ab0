package prize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistribute(t *testing.T) {
	tests := []struct {
		pool                 string
		first, second, third string
	}{
		{"100", "60", "25", "15"},
		{"1", "0.6", "0.25", "0.15"},
		{"0", "0", "0", "0"},
		{"0.3", "0.18", "0.075", "0.045"},
	}
	for _, tt := range tests {
		t.Run(tt.pool, func(t *testing.T) {
			pool := decimal.RequireFromString(tt.pool)
			split, err := Distribute(pool)
			require.NoError(t, err)
			assert.True(t, split.First.Equal(decimal.RequireFromString(tt.first)), "first = %s", split.First)
			assert.True(t, split.Second.Equal(decimal.RequireFromString(tt.second)), "second = %s", split.Second)
			assert.True(t, split.Third.Equal(decimal.RequireFromString(tt.third)), "third = %s", split.Third)
			sum := split.First.Add(split.Second).Add(split.Third)
			assert.True(t, sum.Equal(pool), "sum = %s, want %s", sum, pool)
		})
	}
}

func TestDistributeRejectsNegative(t *testing.T) {
	_, err := Distribute(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativePool)
}

func TestAllocateFewerThanThreeWinners(t *testing.T) {
	awards, err := Allocate(decimal.NewFromInt(100), []Winner{
		{WalletAddress: "w1", Score: 900},
		{WalletAddress: "w2", Score: 800},
	})
	require.NoError(t, err)
	require.Len(t, awards, 2)
	assert.Equal(t, 1, awards[0].Rank)
	assert.True(t, awards[0].Amount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, "w2", awards[1].WalletAddress)
	assert.True(t, awards[1].Amount.Equal(decimal.NewFromInt(25)))
}

func TestAllocateCapsAtThree(t *testing.T) {
	winners := []Winner{{WalletAddress: "a"}, {WalletAddress: "b"}, {WalletAddress: "c"}, {WalletAddress: "d"}}
	awards, err := Allocate(decimal.NewFromInt(10), winners)
	require.NoError(t, err)
	assert.Len(t, awards, 3)
	assert.Equal(t, 3, awards[2].Rank)
}
