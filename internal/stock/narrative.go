package stock

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

type narrativeParams struct {
	Approach     string
	Goal         string
	Horizon      string
	ShoppingSite string
	CartTotal    float64
	Ticker       string
	PastValue    float64
	TodayValue   float64
	PercentGain  float64
	PeriodYears  float64
}

type narrativeKey struct {
	approach string
	goal     string
}

// blurbEndings maps (approach, goal) to the closing sentence of the
// narrative. Unrecognized pairs fall back to a generic ending.
var blurbEndings = map[narrativeKey]func(p narrativeParams) string{
	{"conservative", "emergency"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, this shows how steady growth builds your safety net — but remember, past returns aren't guaranteed.", p.Approach, p.Horizon, p.Goal)
	},
	{"conservative", "travel"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, it's a cute what-if showing how patience pays… but actual vacations need cash, not just stocks!", p.Approach, p.Horizon, p.Goal)
	},
	{"conservative", "future_home"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, this steady approach could've helped with that down payment — slow and steady wins the real estate race.", p.Approach, p.Horizon, p.Goal)
	},
	{"conservative", "long_term_wealth"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, it shows how playing it safe can still build wealth over time — boring but effective!", p.Approach, p.Horizon, p.Goal)
	},
	{"conservative", "other"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon, it's a gentle reminder that stability and growth can coexist — just at a chill pace.", p.Approach, p.Horizon)
	},
	{"balanced", "emergency"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, it's a cute what-if showing balanced growth for security — but keep some cash handy too!", p.Approach, p.Horizon, p.Goal)
	},
	{"balanced", "travel"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, it's a cute what-if… instead of buying from %s today, you could've been planning that dream trip with these returns.", p.Approach, p.Horizon, p.Goal, p.ShoppingSite)
	},
	{"balanced", "future_home"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, this balanced approach could've gotten you closer to those house keys — not too risky, not too slow.", p.Approach, p.Horizon, p.Goal)
	},
	{"balanced", "long_term_wealth"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, it shows the sweet spot between safety and growth — perfect for building wealth without the stress.", p.Approach, p.Horizon, p.Goal)
	},
	{"balanced", "other"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon, it's the Goldilocks of investing — not too safe, not too risky, just right for steady gains.", p.Approach, p.Horizon)
	},
	{"aggressive", "emergency"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, this shows the power of bold moves — but emergency funds need stability, not volatility!", p.Approach, p.Horizon, p.Goal)
	},
	{"aggressive", "travel"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, those gains could've been first-class tickets — high risk, high reward, high adventure!", p.Approach, p.Horizon, p.Goal)
	},
	{"aggressive", "future_home"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, these bold gains could've been your down payment — but the ride might've been bumpy!", p.Approach, p.Horizon, p.Goal)
	},
	{"aggressive", "long_term_wealth"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon toward %s, it's about maximizing gains and accepting the rollercoaster — fortune favors the bold!", p.Approach, p.Horizon, p.Goal)
	},
	{"aggressive", "other"}: func(p narrativeParams) string {
		return fmt.Sprintf(". For your %s vibe and %s horizon, you're playing for big wins — just remember, what goes up fast can come down faster.", p.Approach, p.Horizon)
	},
}

// renderBlurb builds the full narrative sentence for a recommendation.
func renderBlurb(p narrativeParams) string {
	base := fmt.Sprintf("Girl math but make it finance: your %s at %s could've been a %s moment — %s years ago it was %s, and today it'd be %s (%s gain)",
		formatMoney(p.CartTotal), p.ShoppingSite, p.Ticker,
		formatYears(p.PeriodYears), formatMoney(p.PastValue), formatMoney(p.TodayValue),
		formatPercent(p.PercentGain))

	ending, ok := blurbEndings[narrativeKey{p.Approach, p.Goal}]
	if !ok {
		return base + fmt.Sprintf(". For your %s vibe and %s horizon toward %s, it's an interesting what-if moment!", p.Approach, p.Horizon, p.Goal)
	}
	return base + ending(p)
}

// formatMoney renders a dollar amount with thousands separators and two
// decimals.
func formatMoney(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// formatPercent renders a one-decimal percentage with an explicit "+" on
// gains.
func formatPercent(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.1f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

func formatYears(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
