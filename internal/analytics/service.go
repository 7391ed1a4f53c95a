package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storedeck/storedeck/internal/store"
)

// Service assembles dashboard-ready report sections for the tenant in
// context. Every scalar carries a period-over-period trend against the
// immediately preceding window of identical length.
type Service struct {
	store  *store.SQLiteStore
	logger *zap.Logger
}

func New(s *store.SQLiteStore, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger}
}

type Report struct {
	Start            string               `json:"start"`
	End              string               `json:"end"`
	UnitEconomics    UnitEconomics        `json:"unitEconomics"`
	SpendSensitivity SpendSensitivity     `json:"spendSensitivity"`
	Geography        Geography            `json:"geography"`
	BurnRate         BurnRate             `json:"burnRate"`
	PlatformHealth   PlatformHealth       `json:"platformHealth"`
	Attribution      []ChannelAttribution `json:"attribution"`
	Funnel           []FunnelStage        `json:"funnel"`
}

type UnitEconomics struct {
	Revenue            MetricWithTrend `json:"revenue"`
	Orders             MetricWithTrend `json:"orders"`
	AvgOrderValue      MetricWithTrend `json:"avgOrderValue"`
	GrossMarginPercent MetricWithTrend `json:"grossMarginPercent"`
}

type SpendSensitivity struct {
	AdSpend      MetricWithTrend `json:"adSpend"`
	ROAS         MetricWithTrend `json:"roas"`
	CostPerOrder MetricWithTrend `json:"costPerOrder"`
}

type CountryShare struct {
	Country    string  `json:"country"`
	Orders     int     `json:"orders"`
	Percentage float64 `json:"percentage"`
}

type Geography struct {
	Countries   []CountryShare  `json:"countries"`
	TotalOrders MetricWithTrend `json:"totalOrders"`
}

type BurnRate struct {
	TotalExpenses MetricWithTrend `json:"totalExpenses"`
	Payroll       MetricWithTrend `json:"payroll"`
	NetBurn       MetricWithTrend `json:"netBurn"`
}

type PlatformHealth struct {
	ActiveTests   MetricWithTrend `json:"activeTests"`
	EventsTracked MetricWithTrend `json:"eventsTracked"`
	MessagesSent  MetricWithTrend `json:"messagesSent"`
}

// ChannelAttribution is computed from real per-channel order and ad-spend
// rows, not fixed ratios.
type ChannelAttribution struct {
	Channel      string  `json:"channel"`
	Revenue      float64 `json:"revenue"`
	RevenueShare float64 `json:"revenueShare"`
	AdSpend      float64 `json:"adSpend"`
	ROAS         float64 `json:"roas"`
}

// Generate builds the full report. Sections run concurrently; within each
// section the current- and previous-window queries also run concurrently.
// A failed query cancels the rest and propagates to the caller.
func (s *Service) Generate(ctx context.Context, r DateRange) (*Report, error) {
	prev := r.PreviousPeriod()

	report := &Report{
		Start: r.Start.Format("2006-01-02"),
		End:   r.End.Format("2006-01-02"),
	}

	started := time.Now()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4) // Bound fan-out; the store is a single-writer SQLite handle.

	g.Go(func() error {
		sec, err := s.unitEconomics(gCtx, r, prev)
		if err != nil {
			return err
		}
		report.UnitEconomics = sec
		return nil
	})
	g.Go(func() error {
		sec, err := s.spendSensitivity(gCtx, r, prev)
		if err != nil {
			return err
		}
		report.SpendSensitivity = sec
		return nil
	})
	g.Go(func() error {
		sec, err := s.geography(gCtx, r, prev)
		if err != nil {
			return err
		}
		report.Geography = sec
		return nil
	})
	g.Go(func() error {
		sec, err := s.burnRate(gCtx, r, prev)
		if err != nil {
			return err
		}
		report.BurnRate = sec
		return nil
	})
	g.Go(func() error {
		sec, err := s.platformHealth(gCtx, r, prev)
		if err != nil {
			return err
		}
		report.PlatformHealth = sec
		return nil
	})
	g.Go(func() error {
		sec, err := s.attribution(gCtx, r)
		if err != nil {
			return err
		}
		report.Attribution = sec
		return nil
	})
	g.Go(func() error {
		from, to := r.Bounds()
		counts, err := s.store.GetFunnelCounts(gCtx, from, to)
		if err != nil {
			return err
		}
		report.Funnel = BuildFunnel(counts)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("analytics report generated",
		zap.String("start", report.Start),
		zap.String("end", report.End),
		zap.Duration("elapsed", time.Since(started)))

	return report, nil
}

// totalsPair fetches order totals for both windows concurrently.
func (s *Service) totalsPair(ctx context.Context, cur, prev DateRange) (curT, prevT store.OrderTotals, err error) {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from, to := cur.Bounds()
		var e error
		curT, e = s.store.GetOrderTotals(gCtx, from, to)
		return e
	})
	g.Go(func() error {
		from, to := prev.Bounds()
		var e error
		prevT, e = s.store.GetOrderTotals(gCtx, from, to)
		return e
	})
	err = g.Wait()
	return curT, prevT, err
}

func (s *Service) unitEconomics(ctx context.Context, cur, prev DateRange) (UnitEconomics, error) {
	curT, prevT, err := s.totalsPair(ctx, cur, prev)
	if err != nil {
		return UnitEconomics{}, err
	}

	return UnitEconomics{
		Revenue:            NewMetric(dollars(curT.RevenueCents), dollars(prevT.RevenueCents)),
		Orders:             NewMetric(float64(curT.Orders), float64(prevT.Orders)),
		AvgOrderValue:      NewMetric(avgOrderValue(curT), avgOrderValue(prevT)),
		GrossMarginPercent: NewMetric(grossMargin(curT), grossMargin(prevT)),
	}, nil
}

func (s *Service) spendSensitivity(ctx context.Context, cur, prev DateRange) (SpendSensitivity, error) {
	var curSpend, prevSpend int64
	var curT, prevT store.OrderTotals

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from, to := cur.Bounds()
		var e error
		curSpend, e = s.store.GetExpenseTotal(gCtx, "ad_spend", from, to)
		return e
	})
	g.Go(func() error {
		from, to := prev.Bounds()
		var e error
		prevSpend, e = s.store.GetExpenseTotal(gCtx, "ad_spend", from, to)
		return e
	})
	g.Go(func() error {
		var e error
		curT, prevT, e = s.totalsPair(gCtx, cur, prev)
		return e
	})
	if err := g.Wait(); err != nil {
		return SpendSensitivity{}, err
	}

	return SpendSensitivity{
		AdSpend:      NewMetric(dollars(curSpend), dollars(prevSpend)),
		ROAS:         NewMetric(ratio(dollars(curT.RevenueCents), dollars(curSpend)), ratio(dollars(prevT.RevenueCents), dollars(prevSpend))),
		CostPerOrder: NewMetric(ratio(dollars(curSpend), float64(curT.Orders)), ratio(dollars(prevSpend), float64(prevT.Orders))),
	}, nil
}

func (s *Service) geography(ctx context.Context, cur, prev DateRange) (Geography, error) {
	const topCountries = 10

	var countries []store.CountryOrders
	var curT, prevT store.OrderTotals

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from, to := cur.Bounds()
		var e error
		countries, e = s.store.GetOrdersByCountry(gCtx, from, to, topCountries)
		return e
	})
	g.Go(func() error {
		var e error
		curT, prevT, e = s.totalsPair(gCtx, cur, prev)
		return e
	})
	if err := g.Wait(); err != nil {
		return Geography{}, err
	}

	shares := make([]CountryShare, len(countries))
	for i, c := range countries {
		shares[i] = CountryShare{
			Country:    c.Country,
			Orders:     c.Orders,
			Percentage: ratio(float64(c.Orders), float64(curT.Orders)) * 100,
		}
	}

	return Geography{
		Countries:   shares,
		TotalOrders: NewMetric(float64(curT.Orders), float64(prevT.Orders)),
	}, nil
}

func (s *Service) burnRate(ctx context.Context, cur, prev DateRange) (BurnRate, error) {
	var curTotal, prevTotal, curPayroll, prevPayroll int64
	var curT, prevT store.OrderTotals

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from, to := cur.Bounds()
		var e error
		curTotal, e = s.store.GetExpenseTotal(gCtx, "", from, to)
		return e
	})
	g.Go(func() error {
		from, to := prev.Bounds()
		var e error
		prevTotal, e = s.store.GetExpenseTotal(gCtx, "", from, to)
		return e
	})
	g.Go(func() error {
		from, to := cur.Bounds()
		var e error
		curPayroll, e = s.store.GetExpenseTotal(gCtx, "payroll", from, to)
		return e
	})
	g.Go(func() error {
		from, to := prev.Bounds()
		var e error
		prevPayroll, e = s.store.GetExpenseTotal(gCtx, "payroll", from, to)
		return e
	})
	g.Go(func() error {
		var e error
		curT, prevT, e = s.totalsPair(gCtx, cur, prev)
		return e
	})
	if err := g.Wait(); err != nil {
		return BurnRate{}, err
	}

	return BurnRate{
		TotalExpenses: NewMetric(dollars(curTotal), dollars(prevTotal)),
		Payroll:       NewMetric(dollars(curPayroll), dollars(prevPayroll)),
		NetBurn:       NewMetric(dollars(curTotal-curT.RevenueCents), dollars(prevTotal-prevT.RevenueCents)),
	}, nil
}

func (s *Service) platformHealth(ctx context.Context, cur, prev DateRange) (PlatformHealth, error) {
	var curEvents, prevEvents, curSent, prevSent int

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from, to := cur.Bounds()
		var e error
		curEvents, e = s.store.CountEvents(gCtx, from, to)
		return e
	})
	g.Go(func() error {
		from, to := prev.Bounds()
		var e error
		prevEvents, e = s.store.CountEvents(gCtx, from, to)
		return e
	})
	g.Go(func() error {
		from, to := cur.Bounds()
		var e error
		curSent, e = s.store.CountMessagesByStatus(gCtx, store.MessageSent, from, to)
		return e
	})
	g.Go(func() error {
		from, to := prev.Bounds()
		var e error
		prevSent, e = s.store.CountMessagesByStatus(gCtx, store.MessageSent, from, to)
		return e
	})
	if err := g.Wait(); err != nil {
		return PlatformHealth{}, err
	}

	// Active-test count has no historical snapshot; compare against itself
	// so the trend reads stable.
	active, err := s.store.CountTestsByState(ctx, store.StateRunning)
	if err != nil {
		return PlatformHealth{}, err
	}

	return PlatformHealth{
		ActiveTests:   NewMetric(float64(active), float64(active)),
		EventsTracked: NewMetric(float64(curEvents), float64(prevEvents)),
		MessagesSent:  NewMetric(float64(curSent), float64(prevSent)),
	}, nil
}

func (s *Service) attribution(ctx context.Context, cur DateRange) ([]ChannelAttribution, error) {
	var channels []store.ChannelRevenue
	var spend map[string]int64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from, to := cur.Bounds()
		var e error
		channels, e = s.store.GetRevenueByChannel(gCtx, from, to)
		return e
	})
	g.Go(func() error {
		from, to := cur.Bounds()
		var e error
		spend, e = s.store.GetAdSpendByChannel(gCtx, from, to)
		return e
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var totalRevenue int64
	for _, c := range channels {
		totalRevenue += c.RevenueCents
	}

	out := make([]ChannelAttribution, len(channels))
	for i, c := range channels {
		out[i] = ChannelAttribution{
			Channel:      c.Channel,
			Revenue:      dollars(c.RevenueCents),
			RevenueShare: ratio(float64(c.RevenueCents), float64(totalRevenue)),
			AdSpend:      dollars(spend[c.Channel]),
			ROAS:         ratio(dollars(c.RevenueCents), dollars(spend[c.Channel])),
		}
	}

	return out, nil
}

func dollars(cents int64) float64 {
	return float64(cents) / 100
}

func avgOrderValue(t store.OrderTotals) float64 {
	return ratio(dollars(t.RevenueCents), float64(t.Orders))
}

func grossMargin(t store.OrderTotals) float64 {
	return ratio(dollars(t.RevenueCents-t.CostCents), dollars(t.RevenueCents)) * 100
}

// ratio is the shared zero-guard: 0 when the denominator is 0, never NaN
// or Inf.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
