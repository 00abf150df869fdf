package analytics

import (
	"math"

	"github.com/rustyeddy/propjournal/ledger"
)

// Stats is the aggregate performance record of a set of trades.
type Stats struct {
	TotalTrades          int     `json:"total_trades_count"`
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	WinRate              float64 `json:"win_rate"`
	BestTrade            float64 `json:"best_trade"`
	WorstTrade           float64 `json:"worst_trade"`
	AverageWin           float64 `json:"average_win"`
	AverageLoss          float64 `json:"average_loss"`
	HighestProfitableDay float64 `json:"highest_profitable_day"`
	ProfitFactor         float64 `json:"profit_factor"`
	AverageRRR           float64 `json:"average_rrr"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	ZScore               float64 `json:"z_score"`
}

// ComputeStats summarizes trades, which must be ordered by close time for
// the runs test to be meaningful.
func ComputeStats(trades []ledger.Trade) Stats {
	profits := Profits(trades)

	var s Stats
	s.TotalTrades = len(profits)

	var wins, losses []float64
	for _, p := range profits {
		switch {
		case p > 0:
			wins = append(wins, p)
		case p < 0:
			losses = append(losses, p)
		}
	}
	s.Wins = len(wins)
	s.Losses = len(losses)
	s.WinRate = WinRate(profits)

	if len(profits) > 0 {
		s.BestTrade, s.WorstTrade = profits[0], profits[0]
		for _, p := range profits[1:] {
			s.BestTrade = math.Max(s.BestTrade, p)
			s.WorstTrade = math.Min(s.WorstTrade, p)
		}
	}

	avgWin, avgLoss := mean(wins), mean(losses)
	s.AverageWin = Round2(avgWin)
	s.AverageLoss = Round2(avgLoss)
	s.HighestProfitableDay = Round2(HighestDailyProfit(DailyProfit(trades)))
	s.ProfitFactor = ProfitFactor(profits)
	s.AverageRRR = PayoffRatio(avgWin, avgLoss)
	s.SharpeRatio = SharpeRatio(profits)
	s.ZScore = RunsZScore(profits)
	return s
}

// Profits extracts trade profits in order.
func Profits(trades []ledger.Trade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.Profit
	}
	return out
}

// WinRate is the percentage of profits strictly above zero.
func WinRate(profits []float64) float64 {
	if len(profits) == 0 {
		return 0
	}
	wins := 0
	for _, p := range profits {
		if p > 0 {
			wins++
		}
	}
	return Round2(float64(wins) / float64(len(profits)) * 100)
}

// ProfitFactor is gross profit over gross loss. With no losses it is 0.
func ProfitFactor(profits []float64) float64 {
	var gross, loss float64
	for _, p := range profits {
		if p > 0 {
			gross += p
		} else if p < 0 {
			loss += p
		}
	}
	if loss == 0 {
		return 0
	}
	return Round2(gross / math.Abs(loss))
}

// PayoffRatio is the average win over the magnitude of the average loss.
func PayoffRatio(avgWin, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 0
	}
	return Round2(avgWin / math.Abs(avgLoss))
}

// SharpeRatio is the per-trade mean over the sample standard deviation.
// It is not annualized.
func SharpeRatio(profits []float64) float64 {
	n := len(profits)
	if n < 2 {
		return 0
	}
	m := mean(profits)
	var ss float64
	for _, p := range profits {
		ss += (p - m) * (p - m)
	}
	sd := math.Sqrt(ss / float64(n-1))
	if sd == 0 {
		return 0
	}
	return Round2(m / sd)
}

// RunsZScore is the Wald-Wolfowitz runs test statistic over the win/loss
// sign sequence. A break-even trade counts as a win. Negative values mean
// fewer runs than chance (streaky), positive values more (alternating).
func RunsZScore(profits []float64) float64 {
	n := len(profits)
	if n <= 2 {
		return 0
	}

	var w, l, runs int
	prev := false
	for i, p := range profits {
		win := p >= 0
		if win {
			w++
		} else {
			l++
		}
		if i == 0 || win != prev {
			runs++
		}
		prev = win
	}
	if w == 0 || l == 0 {
		return 0
	}

	total := float64(w + l)
	expected := 2*float64(w)*float64(l)/total + 1
	variance := (expected - 1) * (expected - 2) / (total - 1)
	if variance <= 0 {
		return 0
	}
	return Round2((float64(runs) - expected) / math.Sqrt(variance))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
