package engine

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"equitycurve/types"

	"github.com/shopspring/decimal"
)

type Report struct {
	// Meta / period info
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	TotalPeriod time.Duration
	TotalTicks  int
	TotalTrades int
	OpenTrades  int

	// Absolute performance
	InitialEquity        decimal.Decimal
	FinalEquity          decimal.Decimal
	NetProfit            decimal.Decimal
	TotalReturn          decimal.Decimal
	NetAvgProfitPerTrade decimal.Decimal
	CAGR                 decimal.Decimal

	// Trade-level distribution metrics
	WinRate      decimal.Decimal
	AvgWin       decimal.Decimal
	AvgLoss      decimal.Decimal
	ProfitFactor decimal.Decimal

	// Drawdown & loss streak metrics
	MaxDrawdown          decimal.Decimal
	MaxDrawdownPercent   decimal.Decimal
	MaxDrawdownDuration  time.Duration
	MaxConsecutiveLosses int

	// Risk-adjusted metrics
	SharpeRatio decimal.Decimal
	Exposure    decimal.Decimal
}

// GenerateReport derives summary statistics from a finished run.
func GenerateReport(result *Result, cfg ReportingConfig) *Report {
	points := result.Equity.Points()
	closed := closedOnly(result.Trades)

	report := &Report{
		Name:          cfg.ReportName,
		TotalTicks:    len(points),
		TotalTrades:   len(closed),
		OpenTrades:    len(result.Trades) - len(closed),
		InitialEquity: result.InitialCash,
		FinalEquity:   result.InitialCash,
	}
	if len(points) > 0 {
		report.StartDate = points[0].Time()
		report.EndDate = points[len(points)-1].Time()
		report.TotalPeriod = report.EndDate.Sub(report.StartDate)
		report.FinalEquity = decimal.NewFromFloat(points[len(points)-1].Equity)
		report.Exposure = decimal.NewFromInt(int64(result.LongTicks)).
			Div(decimal.NewFromInt(int64(len(points))))
	}
	report.NetProfit = report.FinalEquity.Sub(report.InitialEquity)
	if report.InitialEquity.IsPositive() {
		report.TotalReturn = report.NetProfit.Div(report.InitialEquity)
	}

	var wg sync.WaitGroup
	wg.Add(6)
	go func() {
		report.NetAvgProfitPerTrade = calcNetAvgProfitPerTrade(closed, &wg)
	}()
	go func() {
		report.WinRate, report.AvgWin, report.AvgLoss, report.ProfitFactor = calcWinLossMetrics(closed, &wg)
	}()
	go func() {
		report.CAGR = calcCAGR(points, &wg)
	}()
	go func() {
		report.MaxDrawdown, report.MaxDrawdownPercent, report.MaxDrawdownDuration = calcDrawdownMetrics(points, &wg)
	}()
	go func() {
		report.MaxConsecutiveLosses = calcMaxConsecutiveLosses(closed, &wg)
	}()
	go func() {
		report.SharpeRatio = calcSharpeRatio(points, cfg.SharpeRiskFreeRate, &wg)
	}()
	wg.Wait()

	return report
}

func (r *Report) Print(w io.Writer) {
	title := "Backtest Report"
	if r.Name != "" {
		title = r.Name
	}
	fmt.Fprintf(w, "===== %s =====\n", title)
	fmt.Fprintf(w, "Start Date:            %s\n", r.StartDate.Format("2006-01-02"))
	fmt.Fprintf(w, "End Date:              %s\n", r.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Total Period:          %d days\n", r.TotalPeriod/(24*time.Hour))
	fmt.Fprintf(w, "Total Ticks:           %d\n", r.TotalTicks)
	fmt.Fprintf(w, "Closed Trades:         %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Open Trades:           %d\n", r.OpenTrades)

	fmt.Fprintln(w, "\n-- Absolute Performance --")
	fmt.Fprintf(w, "Initial Equity:        %s\n", r.InitialEquity.StringFixed(2))
	fmt.Fprintf(w, "Final Equity:          %s\n", r.FinalEquity.StringFixed(2))
	fmt.Fprintf(w, "Net Profit:            %s\n", r.NetProfit.StringFixed(2))
	fmt.Fprintf(w, "Total Return %%:        %s\n", r.TotalReturn.Mul(decimal.NewFromInt(100)).StringFixed(2))
	fmt.Fprintf(w, "Avg Profit/Trade:      %s\n", r.NetAvgProfitPerTrade.StringFixed(2))
	fmt.Fprintf(w, "CAGR:                  %s\n", r.CAGR.StringFixed(4))

	fmt.Fprintln(w, "\n-- Trade-Level Metrics --")
	fmt.Fprintf(w, "Win Rate %%:            %s\n", r.WinRate.Mul(decimal.NewFromInt(100)).StringFixed(2))
	fmt.Fprintf(w, "Avg Win:               %s\n", r.AvgWin.StringFixed(2))
	fmt.Fprintf(w, "Avg Loss:              %s\n", r.AvgLoss.StringFixed(2))
	fmt.Fprintf(w, "Profit Factor:         %s\n", r.ProfitFactor.StringFixed(2))

	fmt.Fprintln(w, "\n-- Drawdown Metrics --")
	fmt.Fprintf(w, "Max Drawdown:          %s\n", r.MaxDrawdown.StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown %%:        %s\n", r.MaxDrawdownPercent.Mul(decimal.NewFromInt(100)).StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown Days:     %d\n", r.MaxDrawdownDuration/(24*time.Hour))
	fmt.Fprintf(w, "Max Consecutive Losses:%d\n", r.MaxConsecutiveLosses)

	fmt.Fprintln(w, "\n-- Risk-Adjusted Metrics --")
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", r.SharpeRatio.StringFixed(4))
	fmt.Fprintf(w, "Exposure %%:            %s\n", r.Exposure.Mul(decimal.NewFromInt(100)).StringFixed(2))

	fmt.Fprintln(w, "==========================")
}

func calcNetAvgProfitPerTrade(trades []types.Trade, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(trades) == 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, tr := range trades {
		total = total.Add(tr.PnL())
	}
	return total.Div(decimal.NewFromInt(int64(len(trades))))
}

// calcWinLossMetrics returns win rate, average win, average loss (as a
// positive amount) and profit factor over closed trades.
func calcWinLossMetrics(trades []types.Trade, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	defer wg.Done()

	sumWins := decimal.Zero
	sumLosses := decimal.Zero
	winCount := 0
	lossCount := 0

	for _, tr := range trades {
		pnl := tr.PnL()
		switch {
		case pnl.GreaterThan(decimal.Zero):
			sumWins = sumWins.Add(pnl)
			winCount++
		case pnl.LessThan(decimal.Zero):
			sumLosses = sumLosses.Add(pnl.Abs())
			lossCount++
		}
	}

	winRate := decimal.Zero
	avgWin := decimal.Zero
	avgLoss := decimal.Zero
	profitFactor := decimal.Zero

	if len(trades) > 0 {
		winRate = decimal.NewFromInt(int64(winCount)).Div(decimal.NewFromInt(int64(len(trades))))
	}
	if winCount > 0 {
		avgWin = sumWins.Div(decimal.NewFromInt(int64(winCount)))
	}
	if lossCount > 0 {
		avgLoss = sumLosses.Div(decimal.NewFromInt(int64(lossCount)))
	}
	if sumLosses.IsPositive() {
		profitFactor = sumWins.Div(sumLosses)
	}
	return winRate, avgWin, avgLoss, profitFactor
}

func calcCAGR(points []EquityPoint, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(points) < 2 {
		return decimal.Zero
	}

	start := points[0]
	end := points[len(points)-1]

	// If starting value is <= 0, CAGR is not well-defined
	if start.Equity <= 0 {
		return decimal.Zero
	}

	// time difference in years (using 365.25 days to account for leap years)
	duration := end.Time().Sub(start.Time())
	if duration <= 0 {
		return decimal.Zero
	}
	years := duration.Hours() / (24.0 * 365.25)

	ratio := end.Equity / start.Equity
	if ratio <= 0 {
		return decimal.Zero
	}

	return decimal.NewFromFloat(math.Pow(ratio, 1.0/years) - 1.0)
}

func calcDrawdownMetrics(points []EquityPoint, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal, time.Duration) {
	defer wg.Done()

	if len(points) == 0 {
		return decimal.Zero, decimal.Zero, 0
	}

	peak := decimal.Zero
	var peakTime time.Time

	maxDD := decimal.Zero
	maxDDPct := decimal.Zero
	var maxDDDuration time.Duration

	for i, p := range points {
		equity := decimal.NewFromFloat(p.Equity)

		if i == 0 || equity.GreaterThan(peak) || peak.IsZero() {
			peak = equity
			peakTime = p.Time()
		}

		if peak.GreaterThan(decimal.Zero) {
			dd := peak.Sub(equity)

			if dd.GreaterThan(maxDD) {
				maxDD = dd
				maxDDPct = dd.Div(peak)
				maxDDDuration = p.Time().Sub(peakTime)
			}
		}
	}

	return maxDD, maxDDPct, maxDDDuration
}

func calcMaxConsecutiveLosses(trades []types.Trade, wg *sync.WaitGroup) int {
	defer wg.Done()

	ordered := append([]types.Trade(nil), trades...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTime < ordered[j].ExitTime
	})

	maxLossStreak := 0
	currentStreak := 0
	for _, tr := range ordered {
		if tr.PnL().LessThan(decimal.Zero) {
			currentStreak++
			if currentStreak > maxLossStreak {
				maxLossStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxLossStreak
}

func calcSharpeRatio(points []EquityPoint, annualRiskFree decimal.Decimal, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	monthlyReturns := getMonthlyReturns(points)
	if len(monthlyReturns) < 2 {
		// Need at least 2 months to compute stddev
		return decimal.Zero
	}

	// rf_monthly = (1 + rf_annual)^(1/12) - 1
	rfMonthly := math.Pow(1.0+annualRiskFree.InexactFloat64(), 1.0/12.0) - 1.0

	excess := make([]float64, 0, len(monthlyReturns))
	for _, r := range monthlyReturns {
		excess = append(excess, r-rfMonthly)
	}

	var sum float64
	for _, x := range excess {
		sum += x
	}
	mean := sum / float64(len(excess))

	var varianceSum float64
	for _, x := range excess {
		diff := x - mean
		varianceSum += diff * diff
	}
	stdMonthly := math.Sqrt(varianceSum / float64(len(excess)-1))
	if stdMonthly == 0 {
		return decimal.Zero
	}

	// Monthly Sharpe, then annualize by sqrt(12)
	return decimal.NewFromFloat(mean / stdMonthly * math.Sqrt(12.0))
}

// getMonthlyReturns returns the returns between consecutive calendar-month
// closing equity values. Points are already in time order.
func getMonthlyReturns(points []EquityPoint) []float64 {
	if len(points) == 0 {
		return nil
	}

	type monthKey struct {
		year  int
		month time.Month
	}

	var monthEnds []float64
	var cur monthKey
	for i, p := range points {
		y, m, _ := p.Time().Date()
		key := monthKey{year: y, month: m}
		if i == 0 || key != cur {
			monthEnds = append(monthEnds, p.Equity)
			cur = key
			continue
		}
		monthEnds[len(monthEnds)-1] = p.Equity
	}

	if len(monthEnds) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(monthEnds)-1)
	prev := monthEnds[0]
	for _, curr := range monthEnds[1:] {
		if prev <= 0 {
			prev = curr
			continue
		}
		returns = append(returns, curr/prev-1)
		prev = curr
	}
	return returns
}

func closedOnly(trades []types.Trade) []types.Trade {
	closed := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		if !t.Open {
			closed = append(closed, t)
		}
	}
	return closed
}
