package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuation_MarshalJSON(t *testing.T) {
	t.Run("undefined encodes nulls", func(t *testing.T) {
		data, err := json.Marshal(UndefinedValuation)
		require.NoError(t, err)
		assert.JSONEq(t, `{"fair_price":null,"discount_percent":null}`, string(data))
	})

	t.Run("defined zero stays zero", func(t *testing.T) {
		data, err := json.Marshal(Valuation{FairPrice: 20, DiscountPercent: 0, Defined: true})
		require.NoError(t, err)
		assert.JSONEq(t, `{"fair_price":20,"discount_percent":0}`, string(data))
	})

	t.Run("round trip keeps sentinel", func(t *testing.T) {
		var v Valuation
		require.NoError(t, json.Unmarshal([]byte(`{"fair_price":null,"discount_percent":null}`), &v))
		assert.False(t, v.Defined)

		require.NoError(t, json.Unmarshal([]byte(`{"fair_price":37.5,"discount_percent":46.67}`), &v))
		assert.Equal(t, Valuation{FairPrice: 37.5, DiscountPercent: 46.67, Defined: true}, v)
	})
}

func TestCapTier(t *testing.T) {
	tests := []struct {
		input string
		want  CapTier
	}{
		{"large", CapTierLarge},
		{"Mid", CapTierMid},
		{" SMALL ", CapTierSmall},
	}
	for _, tt := range tests {
		got, err := ParseCapTier(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCapTier("mega")
	assert.Error(t, err)

	assert.True(t, CapTierLarge > CapTierMid && CapTierMid > CapTierSmall)

	data, err := json.Marshal(map[string]CapTier{"tier": CapTierMid})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"Mid"}`, string(data))
}

func TestExclusion_Error(t *testing.T) {
	e := &Exclusion{Ticker: "HAPV3", Reason: ReasonMissingRequiredField, Field: "market_cap"}
	assert.Equal(t, "HAPV3 excluded: missing_required_field (market_cap)", e.Error())
	assert.True(t, e.IsMissingRequiredField())

	f := &Exclusion{Ticker: "AZUL4", Reason: ReasonFetchFailed, Detail: "timeout"}
	assert.Equal(t, "AZUL4 excluded: fetch_failed: timeout", f.Error())
	assert.False(t, f.IsMissingRequiredField())
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("Discount")
	require.NoError(t, err)
	assert.Equal(t, SortByDiscount, k)

	_, err = ParseSortKey("volume")
	assert.Error(t, err)
}

func TestRunReport_ExcludedCount(t *testing.T) {
	r := &RunReport{Exclusions: []Exclusion{
		{Ticker: "A", Reason: ReasonFetchFailed},
		{Ticker: "B", Reason: ReasonMissingRequiredField},
		{Ticker: "C", Reason: ReasonMissingRequiredField},
	}}
	counts := r.ExcludedCount()
	assert.Equal(t, 1, counts[ReasonFetchFailed])
	assert.Equal(t, 2, counts[ReasonMissingRequiredField])
	assert.True(t, r.IsEmpty())
}
