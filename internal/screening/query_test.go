package screening

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/precinho/internal/contracts"
)

func TestQueryOverrides_Apply(t *testing.T) {
	sector := "Financeiro"
	base := contracts.Query{
		SortKey: contracts.SortByScore,
		Filter:  contracts.Filter{Sector: &sector},
		Limit:   10,
	}

	t.Run("no overrides keeps base", func(t *testing.T) {
		q, err := QueryOverrides{}.Apply(base)
		require.NoError(t, err)
		assert.Equal(t, base, q)
	})

	t.Run("every override", func(t *testing.T) {
		s := " Energia "
		minScore := 50
		minDiscount := 20.0
		limit := 0

		q, err := QueryOverrides{
			Sort:        "discount",
			Sector:      &s,
			Tier:        "large",
			MinScore:    &minScore,
			MinDiscount: &minDiscount,
			Limit:       &limit,
		}.Apply(base)
		require.NoError(t, err)

		assert.Equal(t, contracts.SortByDiscount, q.SortKey)
		assert.Equal(t, "Energia", *q.Filter.Sector)
		assert.Equal(t, contracts.CapTierLarge, *q.Filter.CapTier)
		assert.Equal(t, 50, *q.Filter.MinScore)
		assert.Equal(t, 20.0, *q.Filter.MinDiscount)
		assert.Equal(t, 0, q.Limit)

		// base untouched
		assert.Equal(t, "Financeiro", *base.Filter.Sector)
	})

	t.Run("empty sector clears filter", func(t *testing.T) {
		empty := ""
		q, err := QueryOverrides{Sector: &empty}.Apply(base)
		require.NoError(t, err)
		assert.Nil(t, q.Filter.Sector)
	})

	t.Run("invalid values", func(t *testing.T) {
		bad := 101
		neg := -1
		nan := math.NaN()
		inf := math.Inf(1)
		negInf := math.Inf(-1)
		for _, o := range []QueryOverrides{
			{Sort: "volume"},
			{Tier: "micro"},
			{MinScore: &bad},
			{Limit: &neg},
			{MinDiscount: &nan},
			{MinDiscount: &inf},
			{MinDiscount: &negInf},
		} {
			_, err := o.Apply(base)
			assert.Error(t, err)
		}
	})
}
