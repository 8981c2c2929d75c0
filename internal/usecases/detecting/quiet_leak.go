package detecting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bfroz/tax-insights-api/internal/config"
	"github.com/bfroz/tax-insights-api/internal/domain"
)

// Divisor da fórmula de severidade do quiet leak: cada $25 acumulados
// sobem um ponto na escala
var quietLeakSeverityDivisor = decimal.NewFromInt(25)

// DetectQuietLeaks encontra "vazamentos silenciosos": cobranças pequenas
// e recorrentes no mesmo estabelecimento que, somadas, viram um gasto
// relevante. Um grupo qualifica quando tem pelo menos N ocorrências,
// todas com valor unitário até o teto, e o acumulado passa do mínimo.
func DetectQuietLeaks(transactions []domain.Transaction, cfg config.Detector) []domain.InsightCandidate {
	maxUnit := decimal.NewFromFloat(cfg.QuietLeakMaxUnitAmount)
	minCumulative := decimal.NewFromFloat(cfg.QuietLeakMinCumulative)

	candidates := make([]domain.InsightCandidate, 0)
	for merchantKey, group := range groupByMerchant(transactions) {
		if len(group) < cfg.QuietLeakMinOccurrences {
			continue
		}

		total := decimal.Zero
		maxMember := decimal.Zero
		allSmall := true
		for _, tx := range group {
			if tx.TotalAmount.GreaterThan(maxUnit) {
				allSmall = false
				break
			}
			if tx.TotalAmount.GreaterThan(maxMember) {
				maxMember = tx.TotalAmount
			}
			total = total.Add(tx.TotalAmount)
		}
		if !allSmall || total.LessThan(minCumulative) {
			continue
		}

		merchant := group[0].MerchantOrUnknown()
		severity := clampSeverity(int(total.Div(quietLeakSeverityDivisor).Floor().IntPart()))

		candidates = append(candidates, domain.InsightCandidate{
			Type:  domain.InsightTypeQuietLeak,
			Title: fmt.Sprintf("Gastos pequenos e frequentes em %s", merchant),
			Summary: fmt.Sprintf(
				"%d cobranças em %s somaram $%s no período",
				len(group), merchant, total.StringFixed(2),
			),
			SeverityScore:            severity,
			SupportingTransactionIDs: sortTransactionIDs(group),
			Fingerprint:              Fingerprint(domain.InsightTypeQuietLeak, merchantKey),
			Explanation: domain.Explanation{
				Reason: fmt.Sprintf(
					"Cobranças individuais de até $%s em %s se acumularam em $%s, um padrão fácil de passar despercebido",
					maxMember.StringFixed(2), merchant, total.StringFixed(2),
				),
				Thresholds: []domain.ThresholdCheck{
					{Name: "occurrences", Actual: float64(len(group)), Threshold: float64(cfg.QuietLeakMinOccurrences)},
					{Name: "max_unit_amount", Actual: maxMember.InexactFloat64(), Threshold: cfg.QuietLeakMaxUnitAmount},
					{Name: "cumulative_total", Actual: total.InexactFloat64(), Threshold: cfg.QuietLeakMinCumulative},
				},
				Suggestion: fmt.Sprintf(
					"Revise se as cobranças recorrentes de %s ainda fazem sentido — cancelar ou consolidar pode economizar $%s por período",
					merchant, total.StringFixed(2),
				),
			},
		})
	}

	return candidates
}
