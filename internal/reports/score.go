package reports

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/investrack/portfolio-service/internal/engine"
	"github.com/investrack/portfolio-service/internal/models"
)

// Score component bounds and profitability tiers.
const (
	scoreBase      = 300
	scoreFloor     = 300
	scoreCeiling   = 900
	componentMax   = 200
	pointsPerStock = 20
)

var (
	profitTierHigh = decimal.NewFromInt(50000)
	profitTierMid  = decimal.NewFromInt(10000)
)

// ScoreEngine computes the composite investor score from the holdings
// snapshot, the full ledger, and the current time. It keeps no state and is
// recomputed on demand.
type ScoreEngine struct {
	ledger   LedgerStore
	holdings HoldingsStore
	now      func() time.Time
}

// NewScoreEngine creates a ScoreEngine. now may be nil, defaulting to time.Now.
func NewScoreEngine(ledger LedgerStore, holdings HoldingsStore, now func() time.Time) *ScoreEngine {
	if now == nil {
		now = time.Now
	}
	return &ScoreEngine{ledger: ledger, holdings: holdings, now: now}
}

// Compute derives the score:
//
//	diversification = min(200, 20 × distinct holdings)
//	profitability   = tiered over total realized P&L from the shared replay
//	discipline      = min(200, floor(days since first transaction / 3.65))
//	total           = 300 + components, clamped to [300, 900]
func (s *ScoreEngine) Compute(userID string) (*models.Score, error) {
	holdings, err := s.holdings.GetHoldingsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	txs, err := s.ledger.GetTransactionsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	diversification := pointsPerStock * len(holdings)
	if diversification > componentMax {
		diversification = componentMax
	}

	totalPnL, err := s.totalRealizedPnL(txs)
	if err != nil {
		return nil, err
	}
	profitability := profitabilityScore(totalPnL)

	daysInvesting, hasHistory := s.daysSinceFirstTransaction(txs)
	discipline := 0
	if hasHistory {
		discipline = int(math.Floor(daysInvesting / 3.65))
		if discipline > componentMax {
			discipline = componentMax
		}
	}

	total := scoreBase + diversification + profitability + discipline
	if total > scoreCeiling {
		total = scoreCeiling
	}
	if total < scoreFloor {
		total = scoreFloor
	}

	return &models.Score{
		Score: total,
		Breakdown: models.ScoreBreakdown{
			Base:            scoreBase,
			Diversification: diversification,
			Profitability:   profitability,
			Discipline:      discipline,
		},
		Feedback: models.ScoreFeedback{
			Diversification: diversificationLabel(diversification),
			Profitability:   profitabilityLabel(profitability),
			Discipline:      disciplineLabel(daysInvesting, hasHistory),
		},
	}, nil
}

// totalRealizedPnL sums realized P&L across all instruments using the same
// matcher the statements use. An inconsistent instrument contributes its
// matched portion; cost basis is never invented for the remainder.
func (s *ScoreEngine) totalRealizedPnL(txs []*models.Transaction) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, group := range models.GroupBySymbol(txs) {
		err := engine.MatchLots(group, func(m engine.Match) {
			total = total.Add(m.SaleValue.Sub(m.CostBasis))
		})
		var inconsistency *engine.DataInconsistencyError
		if err != nil && !errors.As(err, &inconsistency) {
			return decimal.Zero, fmt.Errorf("replay: %w", err)
		}
	}
	return total, nil
}

func (s *ScoreEngine) daysSinceFirstTransaction(txs []*models.Transaction) (float64, bool) {
	if len(txs) == 0 {
		return 0, false
	}
	first := txs[0].ExecutedAt
	for _, tx := range txs[1:] {
		if tx.ExecutedAt.Before(first) {
			first = tx.ExecutedAt
		}
	}
	days := s.now().Sub(first).Hours() / 24
	if days < 0 {
		days = 0
	}
	return days, true
}

func profitabilityScore(totalPnL decimal.Decimal) int {
	switch {
	case totalPnL.GreaterThan(profitTierHigh):
		return 200
	case totalPnL.GreaterThan(profitTierMid):
		return 150
	case totalPnL.GreaterThan(decimal.Zero):
		return 100
	default:
		return 50
	}
}

// Label bands are presentation configuration; each is monotonic in its
// driving metric.

func diversificationLabel(score int) string {
	switch {
	case score > 150:
		return "Excellent"
	case score > 80:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

func profitabilityLabel(score int) string {
	switch {
	case score > 150:
		return "Excellent"
	case score > 100:
		return "Good"
	default:
		return "Average"
	}
}

func disciplineLabel(days float64, hasHistory bool) string {
	switch {
	case !hasHistory:
		return "No History Yet"
	case days <= 30:
		return "Just Started"
	case days <= 180:
		return "Building Habits"
	case days <= 365:
		return "Getting Consistent"
	case days <= 730:
		return "Long-Term Focused"
	default:
		return "Veteran Investor"
	}
}
