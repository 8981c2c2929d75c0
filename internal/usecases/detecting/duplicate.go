package detecting

import (
	"fmt"
	"sort"
	"time"

	"github.com/bfroz/tax-insights-api/internal/config"
	"github.com/bfroz/tax-insights-api/internal/domain"
)

// DetectDuplicates encontra prováveis cobranças duplicadas: duas
// transações do mesmo estabelecimento, com o mesmo valor, dentro da
// janela configurada (24h por padrão). Ambas as transações entram como
// evidência do insight.
func DetectDuplicates(transactions []domain.Transaction, cfg config.Detector) []domain.InsightCandidate {
	window := time.Duration(cfg.DuplicateWindowHours) * time.Hour

	// Agrupa por (estabelecimento, valor) e procura pares próximos no tempo
	type pairKey struct {
		merchant string
		amount   string
	}
	groups := make(map[pairKey][]domain.Transaction)
	for _, tx := range transactions {
		key := pairKey{tx.NormalizedMerchant(), tx.TotalAmount.StringFixed(2)}
		groups[key] = append(groups[key], tx)
	}

	candidates := make([]domain.InsightCandidate, 0)
	for key, group := range groups {
		if len(group) < 2 {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			if !group[i].Date.Equal(group[j].Date) {
				return group[i].Date.Before(group[j].Date)
			}
			return group[i].ID < group[j].ID
		})

		// Cada transação participa de no máximo um par, para não emitir
		// o mesmo trio como três insights sobrepostos
		for i := 1; i < len(group); i++ {
			first, second := group[i-1], group[i]
			gap := second.Date.Sub(first.Date)
			if gap > window {
				continue
			}

			merchant := first.MerchantOrUnknown()
			groupingKey := fmt.Sprintf("%s|%s|%s", key.merchant, key.amount, first.Date.Format("2006-01-02"))

			candidates = append(candidates, domain.InsightCandidate{
				Type:  domain.InsightTypeDuplicate,
				Title: fmt.Sprintf("Possível cobrança duplicada em %s", merchant),
				Summary: fmt.Sprintf(
					"Duas cobranças de $%s em %s com %s de diferença",
					first.TotalAmount.StringFixed(2), merchant, formatGap(gap),
				),
				SeverityScore:            clampSeverity(5),
				SupportingTransactionIDs: []string{first.ID, second.ID},
				Fingerprint:              Fingerprint(domain.InsightTypeDuplicate, groupingKey),
				Explanation: domain.Explanation{
					Reason: fmt.Sprintf(
						"Mesmo estabelecimento e mesmo valor ($%s) em um intervalo de %.1fh, abaixo da janela de %dh",
						first.TotalAmount.StringFixed(2), gap.Hours(), cfg.DuplicateWindowHours,
					),
					Thresholds: []domain.ThresholdCheck{
						{Name: "hours_apart", Actual: gap.Hours(), Threshold: float64(cfg.DuplicateWindowHours)},
					},
					Suggestion: fmt.Sprintf(
						"Confirme com %s se uma das cobranças deve ser estornada",
						merchant,
					),
				},
			})
			i++ // pula a segunda transação do par
		}
	}

	return candidates
}

func formatGap(gap time.Duration) string {
	if gap < time.Hour {
		return fmt.Sprintf("%d minutos", int(gap.Minutes()))
	}
	return fmt.Sprintf("%.1f horas", gap.Hours())
}
