package detecting

import (
	"sort"
	"sync"

	"github.com/bfroz/tax-insights-api/internal/config"
	"github.com/bfroz/tax-insights-api/internal/domain"
)

// Detector é uma função pura que varre a janela de transações e emite
// zero ou mais candidatos. Detectores nunca veem a saída uns dos outros
// e uma janela vazia sempre produz zero candidatos, nunca erro.
type Detector func(transactions []domain.Transaction, cfg config.Detector) []domain.InsightCandidate

// Pipeline executa o conjunto de detectores sobre a mesma janela
type Pipeline struct {
	cfg       config.Detector
	detectors []Detector
}

// NewPipeline cria o pipeline com os detectores padrão
func NewPipeline(cfg config.Detector) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		detectors: []Detector{
			DetectQuietLeaks,
			DetectTaxDrag,
			DetectSpikes,
			DetectDuplicates,
		},
	}
}

// Run executa todos os detectores concorrentemente (são independentes e
// puros) e junta os resultados. Candidatos com o mesmo par
// (tipo, fingerprint) são deduplicados — os escopos dos detectores são
// disjuntos, mas a reconciliação trata o par como chave de qualquer forma.
func (p *Pipeline) Run(transactions []domain.Transaction) []domain.InsightCandidate {
	results := make([][]domain.InsightCandidate, len(p.detectors))

	wg := sync.WaitGroup{}
	wg.Add(len(p.detectors))
	for i, detector := range p.detectors {
		go func(i int, detect Detector) {
			defer wg.Done()
			results[i] = detect(transactions, p.cfg)
		}(i, detector)
	}
	wg.Wait()

	type dedupKey struct {
		insightType domain.InsightType
		fingerprint string
	}

	seen := make(map[dedupKey]bool)
	candidates := make([]domain.InsightCandidate, 0)
	for _, partial := range results {
		for _, candidate := range partial {
			key := dedupKey{candidate.Type, candidate.Fingerprint}
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, candidate)
		}
	}

	// Ordenação determinística: severidade decrescente, desempate por
	// tipo e fingerprint para que duas execuções sobre a mesma janela
	// produzam exatamente a mesma lista
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].SeverityScore != candidates[j].SeverityScore {
			return candidates[i].SeverityScore > candidates[j].SeverityScore
		}
		if candidates[i].Type != candidates[j].Type {
			return candidates[i].Type < candidates[j].Type
		}
		return candidates[i].Fingerprint < candidates[j].Fingerprint
	})

	return candidates
}

// clampSeverity limita a severidade bruta ao intervalo [0, 10].
// O clamp inferior é explícito: as fórmulas podem produzir valores
// negativos (ex: taxa logo abaixo do limiar após arredondamento) e o
// floor sozinho não protege contra isso.
func clampSeverity(raw int) int {
	if raw < domain.SeverityMin {
		return domain.SeverityMin
	}
	if raw > domain.SeverityMax {
		return domain.SeverityMax
	}
	return raw
}

// sortTransactionIDs ordena as transações de suporte por data e ID,
// mantendo a lista estável entre execuções
func sortTransactionIDs(transactions []domain.Transaction) []string {
	sorted := make([]domain.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	ids := make([]string, 0, len(sorted))
	for _, tx := range sorted {
		ids = append(ids, tx.ID)
	}
	return ids
}

// groupByMerchant agrupa a janela pelo estabelecimento normalizado.
// Transações sem estabelecimento caem no bucket "unknown".
func groupByMerchant(transactions []domain.Transaction) map[string][]domain.Transaction {
	groups := make(map[string][]domain.Transaction)
	for _, tx := range transactions {
		key := tx.NormalizedMerchant()
		groups[key] = append(groups[key], tx)
	}
	return groups
}
