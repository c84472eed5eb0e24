package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobcore/domain"
)

func TestPopulationSizeMatchesFormula(t *testing.T) {
	gens := Population(1)
	assert.Len(t, gens, 4*Levels+2)
}

func TestPopulationCoversEveryLevelBothSidesBothTypes(t *testing.T) {
	gens := Population(1)

	counts := make(map[string]int)
	for _, g := range gens {
		if g.Type == EventMarket {
			continue
		}
		key := ""
		switch g.Type {
		case EventAdd:
			key = "add"
		case EventCancel:
			key = "cancel"
		}
		if g.Side == domain.SideBuy {
			key += ":buy"
		} else {
			key += ":sell"
		}
		counts[key]++
	}

	for _, key := range []string{"add:buy", "add:sell", "cancel:buy", "cancel:sell"} {
		require.Equal(t, Levels, counts[key], key)
	}
}

func TestPopulationIncludesExactlyTwoMarketGenerators(t *testing.T) {
	gens := Population(1)
	var market []*Generator
	for _, g := range gens {
		if g.Type == EventMarket {
			market = append(market, g)
		}
	}
	require.Len(t, market, 2)
	assert.NotEqual(t, market[0].Side, market[1].Side)
	for _, g := range market {
		assert.InDelta(t, 0.5, g.ArrivalRate, 1e-9)
	}
}

func TestPopulationRatesDecayWithLevel(t *testing.T) {
	gens := Population(1)

	rateAt := func(eventType EventType, side domain.Side, level int) float64 {
		for _, g := range gens {
			if g.Type == eventType && g.Side == side && g.Level == level {
				return g.ArrivalRate
			}
		}
		t.Fatalf("no generator for type=%v side=%v level=%d", eventType, side, level)
		return 0
	}

	assert.Greater(t, rateAt(EventAdd, domain.SideBuy, 1), rateAt(EventAdd, domain.SideBuy, 15))
	assert.Greater(t, rateAt(EventCancel, domain.SideSell, 1), rateAt(EventCancel, domain.SideSell, 15))
}
