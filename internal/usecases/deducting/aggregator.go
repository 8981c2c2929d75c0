package deducting

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bfroz/tax-insights-api/internal/domain"
	"github.com/bfroz/tax-insights-api/pkg/utils"
)

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// BuildDeductionSummary agrega os matches em resumos por categoria.
// Cada transação contribui apenas com o seu melhor match (maior
// confiança): uma transação nunca conta em duas categorias.
//
// effectiveTaxRate é a taxa efetiva do usuário; quando nil (e somente
// quando nil — um 0% explícito é respeitado) cai no padrão configurado.
func (e *Engine) BuildDeductionSummary(
	transactions []domain.Transaction,
	uc domain.UserContext,
	effectiveTaxRate *float64,
) domain.DeductionSummaryResponse {
	rate := e.cfg.DefaultEffectiveRate
	if effectiveTaxRate != nil {
		rate = *effectiveTaxRate
	}
	rateDecimal := decimal.NewFromFloat(rate)

	type categoryAccumulator struct {
		irsCategory        string
		totalSpend         decimal.Decimal
		potentialDeduction decimal.Decimal
		confidenceSum      float64
		transactionIDs     []string
		merchantCounts     map[string]int
	}

	accumulators := make(map[string]*categoryAccumulator)
	for _, tx := range transactions {
		matches := e.MatchTransaction(tx, uc)
		if len(matches) == 0 {
			continue
		}

		// Melhor match apenas: a lista já vem ordenada por confiança
		best := matches[0]

		acc := accumulators[best.Category]
		if acc == nil {
			acc = &categoryAccumulator{
				irsCategory:        best.IRSCategory,
				totalSpend:         decimal.Zero,
				potentialDeduction: decimal.Zero,
				merchantCounts:     make(map[string]int),
			}
			accumulators[best.Category] = acc
		}

		acc.totalSpend = acc.totalSpend.Add(tx.TotalAmount)
		acc.potentialDeduction = acc.potentialDeduction.Add(best.PotentialDeduction)
		acc.confidenceSum += best.Confidence
		acc.transactionIDs = append(acc.transactionIDs, tx.ID)
		acc.merchantCounts[tx.MerchantOrUnknown()]++
	}

	response := domain.DeductionSummaryResponse{
		Deductions:              make([]domain.DeductionCategorySummary, 0, len(accumulators)),
		TotalPotentialDeduction: decimal.Zero,
		EstimatedTaxSavings:     decimal.Zero,
	}

	for category, acc := range accumulators {
		topMerchant := mostFrequentMerchant(acc.merchantCounts)
		savings := acc.potentialDeduction.Mul(rateDecimal).Round(2)

		response.Deductions = append(response.Deductions, domain.DeductionCategorySummary{
			Category:           category,
			IRSCategory:        acc.irsCategory,
			TotalSpend:         acc.totalSpend,
			PotentialDeduction: acc.potentialDeduction,
			EstimatedSavings:   savings,
			Confidence:         utils.RoundWithTwoDecimalPlace(acc.confidenceSum / float64(len(acc.transactionIDs))),
			Suggestion: fmt.Sprintf(
				"Você tem %d transações elegíveis em %s, a maioria em %s — potencial de dedução de $%s",
				len(acc.transactionIDs), category, topMerchant, acc.potentialDeduction.StringFixed(2),
			),
			Transactions: acc.transactionIDs,
		})

		response.TotalPotentialDeduction = response.TotalPotentialDeduction.Add(acc.potentialDeduction)
		response.EstimatedTaxSavings = response.EstimatedTaxSavings.Add(savings)
	}

	// Categorias com maior potencial primeiro; desempate por nome para
	// manter a resposta determinística
	sort.Slice(response.Deductions, func(i, j int) bool {
		if !response.Deductions[i].PotentialDeduction.Equal(response.Deductions[j].PotentialDeduction) {
			return response.Deductions[i].PotentialDeduction.GreaterThan(response.Deductions[j].PotentialDeduction)
		}
		return response.Deductions[i].Category < response.Deductions[j].Category
	})

	return response
}

func mostFrequentMerchant(counts map[string]int) string {
	top := ""
	topCount := 0
	for merchant, count := range counts {
		if count > topCount || (count == topCount && merchant < top) {
			top = merchant
			topCount = count
		}
	}
	return top
}
