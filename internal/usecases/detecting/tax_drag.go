package detecting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bfroz/tax-insights-api/internal/config"
	"github.com/bfroz/tax-insights-api/internal/domain"
)

// Base da fórmula de severidade do tax drag: cada ponto percentual acima
// de 8% de taxa efetiva sobe um ponto na escala
var taxDragSeverityBase = decimal.NewFromFloat(0.08)

// DetectTaxDrag encontra estabelecimentos cuja taxa efetiva de imposto
// (imposto acumulado / gasto acumulado) está acima do limiar em um volume
// de gasto relevante. Grupos com gasto zero são ignorados para não
// dividir por zero.
func DetectTaxDrag(transactions []domain.Transaction, cfg config.Detector) []domain.InsightCandidate {
	minRate := decimal.NewFromFloat(cfg.TaxDragMinEffectiveRate)
	minSpend := decimal.NewFromFloat(cfg.TaxDragMinSpend)

	candidates := make([]domain.InsightCandidate, 0)
	for merchantKey, group := range groupByMerchant(transactions) {
		totalSpend := decimal.Zero
		totalTax := decimal.Zero
		for _, tx := range group {
			totalSpend = totalSpend.Add(tx.TotalAmount)
			totalTax = totalTax.Add(tx.TaxAmount)
		}

		// Guarda de divisão por zero: sem gasto, o detector não se aplica
		if totalSpend.IsZero() || totalSpend.LessThan(minSpend) {
			continue
		}

		effectiveRate := totalTax.Div(totalSpend)
		if !effectiveRate.GreaterThan(minRate) {
			continue
		}

		merchant := group[0].MerchantOrUnknown()
		severity := clampSeverity(int(
			effectiveRate.Sub(taxDragSeverityBase).Mul(decimal.NewFromInt(100)).Floor().IntPart(),
		))
		ratePct := effectiveRate.Mul(decimal.NewFromInt(100))

		candidates = append(candidates, domain.InsightCandidate{
			Type:  domain.InsightTypeTaxDrag,
			Title: fmt.Sprintf("Taxa efetiva de imposto alta em %s", merchant),
			Summary: fmt.Sprintf(
				"Você pagou $%s de imposto sobre $%s em %s (taxa efetiva de %s%%)",
				totalTax.StringFixed(2), totalSpend.StringFixed(2), merchant, ratePct.StringFixed(1),
			),
			SeverityScore:            severity,
			SupportingTransactionIDs: sortTransactionIDs(group),
			Fingerprint:              Fingerprint(domain.InsightTypeTaxDrag, merchantKey),
			Explanation: domain.Explanation{
				Reason: fmt.Sprintf(
					"A taxa efetiva de imposto em %s ficou em %s%%, acima do limiar de %.1f%%",
					merchant, ratePct.StringFixed(1), cfg.TaxDragMinEffectiveRate*100,
				),
				Thresholds: []domain.ThresholdCheck{
					{Name: "effective_rate", Actual: effectiveRate.InexactFloat64(), Threshold: cfg.TaxDragMinEffectiveRate},
					{Name: "total_spend", Actual: totalSpend.InexactFloat64(), Threshold: cfg.TaxDragMinSpend},
				},
				Suggestion: fmt.Sprintf(
					"Verifique se as compras em %s poderiam ser feitas em categoria ou jurisdição com imposto menor",
					merchant,
				),
			},
		})
	}

	return candidates
}
