package detecting

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bfroz/tax-insights-api/internal/config"
	"github.com/bfroz/tax-insights-api/internal/domain"
)

// DetectSpikes cobre duas variantes da mesma família:
//   - outliers pontuais: transações acima de um múltiplo da média da janela;
//   - crescimento mês a mês: estabelecimentos cujo total mensal cresceu
//     mais que o percentual configurado frente ao mês anterior.
func DetectSpikes(transactions []domain.Transaction, cfg config.Detector) []domain.InsightCandidate {
	candidates := detectOutlierSpikes(transactions, cfg)
	candidates = append(candidates, detectMonthlySpikes(transactions, cfg)...)
	return candidates
}

func detectOutlierSpikes(transactions []domain.Transaction, cfg config.Detector) []domain.InsightCandidate {
	// Janela vazia ou com média zero: o detector não se aplica
	if len(transactions) == 0 {
		return nil
	}

	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.TotalAmount)
	}
	average := total.Div(decimal.NewFromInt(int64(len(transactions))))
	if average.IsZero() {
		return nil
	}

	multiplier := decimal.NewFromFloat(cfg.SpikeOutlierMultiplier)
	cutoff := average.Mul(multiplier)

	candidates := make([]domain.InsightCandidate, 0)
	for _, tx := range transactions {
		if !tx.TotalAmount.GreaterThan(cutoff) {
			continue
		}

		ratio := tx.TotalAmount.Div(average)
		severity := clampSeverity(int(
			ratio.Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(2)).Floor().IntPart(),
		))
		merchant := tx.MerchantOrUnknown()

		// A chave de agrupamento identifica a transação pelo conteúdo
		// (estabelecimento, dia e valor), nunca pelo ID do banco
		groupingKey := fmt.Sprintf(
			"%s|%s|%s",
			tx.NormalizedMerchant(), tx.Date.Format("2006-01-02"), tx.TotalAmount.StringFixed(2),
		)

		candidates = append(candidates, domain.InsightCandidate{
			Type:  domain.InsightTypeSpike,
			Title: fmt.Sprintf("Gasto fora do padrão em %s", merchant),
			Summary: fmt.Sprintf(
				"Uma transação de $%s em %s ficou %sx acima da sua média de $%s",
				tx.TotalAmount.StringFixed(2), merchant, ratio.StringFixed(1), average.StringFixed(2),
			),
			SeverityScore:            severity,
			SupportingTransactionIDs: []string{tx.ID},
			Fingerprint:              Fingerprint(domain.InsightTypeSpike, groupingKey),
			Explanation: domain.Explanation{
				Reason: fmt.Sprintf(
					"A transação de $%s supera em %sx a média da janela ($%s); o limiar é %.1fx",
					tx.TotalAmount.StringFixed(2), ratio.StringFixed(1), average.StringFixed(2), cfg.SpikeOutlierMultiplier,
				),
				Thresholds: []domain.ThresholdCheck{
					{Name: "outlier_ratio", Actual: ratio.InexactFloat64(), Threshold: cfg.SpikeOutlierMultiplier},
				},
				Suggestion: "Confirme se esse gasto era esperado e se há comprovante guardado para ele",
			},
		})
	}

	return candidates
}

func detectMonthlySpikes(transactions []domain.Transaction, cfg config.Detector) []domain.InsightCandidate {
	type monthGroup struct {
		total        decimal.Decimal
		transactions []domain.Transaction
	}

	// Totais por (estabelecimento, mês)
	byMerchant := make(map[string]map[string]*monthGroup)
	for _, tx := range transactions {
		merchantKey := tx.NormalizedMerchant()
		month := tx.Date.Format("2006-01")
		if byMerchant[merchantKey] == nil {
			byMerchant[merchantKey] = make(map[string]*monthGroup)
		}
		group := byMerchant[merchantKey][month]
		if group == nil {
			group = &monthGroup{total: decimal.Zero}
			byMerchant[merchantKey][month] = group
		}
		group.total = group.total.Add(tx.TotalAmount)
		group.transactions = append(group.transactions, tx)
	}

	hundred := decimal.NewFromInt(100)
	minIncrease := decimal.NewFromFloat(cfg.SpikeMonthlyIncreasePct)

	candidates := make([]domain.InsightCandidate, 0)
	for merchantKey, months := range byMerchant {
		keys := make([]string, 0, len(months))
		for month := range months {
			keys = append(keys, month)
		}
		sort.Strings(keys)

		for i := 1; i < len(keys); i++ {
			// Compara apenas meses de calendário consecutivos
			if keys[i] != nextMonth(keys[i-1]) {
				continue
			}

			previous := months[keys[i-1]]
			current := months[keys[i]]

			// Guarda de divisão por zero: sem base de comparação, pula
			if previous.total.IsZero() {
				continue
			}

			increasePct := current.total.Sub(previous.total).Div(previous.total).Mul(hundred)
			if !increasePct.GreaterThan(minIncrease) {
				continue
			}

			severity := clampSeverity(int(
				increasePct.Sub(minIncrease).Div(decimal.NewFromInt(10)).Floor().IntPart(),
			))
			merchant := current.transactions[0].MerchantOrUnknown()

			candidates = append(candidates, domain.InsightCandidate{
				Type:  domain.InsightTypeSpike,
				Title: fmt.Sprintf("Gasto mensal crescente em %s", merchant),
				Summary: fmt.Sprintf(
					"O gasto em %s subiu %s%% em %s frente ao mês anterior ($%s → $%s)",
					merchant, increasePct.StringFixed(0), keys[i],
					previous.total.StringFixed(2), current.total.StringFixed(2),
				),
				SeverityScore:            severity,
				SupportingTransactionIDs: sortTransactionIDs(current.transactions),
				Fingerprint:              Fingerprint(domain.InsightTypeSpike, fmt.Sprintf("%s|%s", merchantKey, keys[i])),
				Explanation: domain.Explanation{
					Reason: fmt.Sprintf(
						"O total mensal em %s passou de $%s para $%s, alta de %s%% contra um limiar de %.0f%%",
						merchant, previous.total.StringFixed(2), current.total.StringFixed(2),
						increasePct.StringFixed(0), cfg.SpikeMonthlyIncreasePct,
					),
					Thresholds: []domain.ThresholdCheck{
						{Name: "percent_increase", Actual: increasePct.InexactFloat64(), Threshold: cfg.SpikeMonthlyIncreasePct},
					},
					Suggestion: fmt.Sprintf(
						"Compare as transações de %s nos dois meses para entender o que puxou a alta",
						merchant,
					),
				},
			})
		}
	}

	return candidates
}

// nextMonth devolve o mês de calendário seguinte no formato "2006-01"
func nextMonth(month string) string {
	var year, m int
	if _, err := fmt.Sscanf(month, "%d-%d", &year, &m); err != nil {
		return ""
	}
	m++
	if m > 12 {
		m = 1
		year++
	}
	return fmt.Sprintf("%04d-%02d", year, m)
}
