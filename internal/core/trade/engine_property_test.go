// Package trade 模拟交易引擎属性测试
package trade

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"latency-arb-scanner/internal/config"
)

func TestEngine_RoundTripPnL_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("单次进出场盈亏符合 (exit-entry)×position-fee", prop.ForAll(
		func(entry float64, exit float64, fee float64, long bool) bool {
			e := New(config.EngineConfig{TransactionFee: fee})

			dir := DirectionShort
			pos := -1.0
			if long {
				dir = DirectionLong
				pos = 1.0
			}

			e.Enter(entry, dir)
			e.Exit(exit)

			want := (exit-entry)*pos - fee
			return math.Abs(e.RealizedPnL()-want) < 1e-9 && e.IsFlat()
		},
		gen.Float64Range(0.01, 100000),
		gen.Float64Range(0.01, 100000),
		gen.Float64Range(0, 10),
		gen.Bool(),
	))

	properties.Property("空仓时 CurrentPnL 与盯市价无关", prop.ForAll(
		func(entry float64, exit float64, mark1 float64, mark2 float64) bool {
			e := New(config.EngineConfig{TransactionFee: 0.5})
			e.Enter(entry, DirectionLong)
			e.Exit(exit)
			return e.CurrentPnL(mark1) == e.CurrentPnL(mark2)
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(1, 1000),
		gen.Float64Range(1, 1000),
		gen.Float64Range(1, 1000),
	))

	properties.TestingRun(t)
}
