package insighting

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bfroz/tax-insights-api/infrastructure/repository"
	"github.com/bfroz/tax-insights-api/internal/config"
	"github.com/bfroz/tax-insights-api/internal/domain"
	"github.com/bfroz/tax-insights-api/internal/usecases/detecting"
	"github.com/bfroz/tax-insights-api/pkg/utils"
)

// Service implementa o ciclo de vida de insights: cache com TTL brando,
// regeneração via pipeline de detectores e reconciliação do estado
// aplicado pelo usuário entre execuções
type Service struct {
	cfg             *config.Config
	pipeline        *detecting.Pipeline
	transactionRepo repository.TransactionRepository
	runRepo         repository.InsightRunRepository
	now             func() time.Time
}

// NewService cria o gerenciador de ciclo de vida de insights
func NewService(
	cfg *config.Config,
	pipeline *detecting.Pipeline,
	transactionRepo repository.TransactionRepository,
	runRepo repository.InsightRunRepository,
) Insighter {
	return &Service{
		cfg:             cfg,
		pipeline:        pipeline,
		transactionRepo: transactionRepo,
		runRepo:         runRepo,
		now:             time.Now,
	}
}

// GetInsights devolve os insights de (usuário, janela). Se a execução
// persistida mais recente ainda está dentro do TTL e o chamador não
// pediu forceRefresh, ela é devolvida sem modificação. Caso contrário o
// pipeline roda do zero e o resultado é reconciliado com a execução
// anterior via (tipo, fingerprint).
func (s *Service) GetInsights(userID string, rangeDays int, opts QueryOptions) (*InsightsResult, error) {
	now := s.now()

	// A execução persistida É o cache: uma leitura falha aqui não pode
	// bloquear a geração, então seguimos como se não houvesse histórico
	prior, err := s.runRepo.GetLatestRun(userID, rangeDays)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"range_days": rangeDays,
			"error":      err.Error(),
		}).Warn("Execução anterior ilegível; todos os candidatos serão tratados como novos")
		prior = nil
	}

	if prior != nil && !opts.ForceRefresh && now.Sub(prior.CreatedAt) < s.cfg.InsightCache.TTL() {
		return &InsightsResult{
			RunID:       prior.ID,
			GeneratedAt: prior.CreatedAt,
			FromCache:   true,
			Insights:    prior.Insights,
		}, nil
	}

	from := now.AddDate(0, 0, -rangeDays)
	transactions, err := s.transactionRepo.ListByUserSince(userID, from)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao carregar a janela de transações")
	}

	candidates := s.pipeline.Run(transactions)
	insights, err := reconcile(candidates, prior)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao reconciliar candidatos")
	}

	runID, err := utils.GenerateID()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao gerar ID da execução")
	}

	run := &domain.InsightRun{
		ID:        runID,
		UserID:    userID,
		RangeDays: rangeDays,
		CreatedAt: now,
		Insights:  make([]domain.Insight, len(insights)),
	}
	for i, insight := range insights {
		insight.RunID = runID
		run.Insights[i] = insight
	}

	// Persistência é melhor esforço: uma escrita falha degrada o cache e
	// o PATCH de estado, mas não a resposta desta chamada
	if err := s.runRepo.SaveRun(run); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"range_days": rangeDays,
			"run_id":     runID,
			"error":      err.Error(),
		}).Error("Erro ao persistir execução de insights")
	}

	return &InsightsResult{
		RunID:       runID,
		GeneratedAt: now,
		FromCache:   false,
		Insights:    run.Insights,
	}, nil
}

// reconcile transforma candidatos em insights, carregando dismissed e
// pinned da execução anterior quando o par (tipo, fingerprint) coincide.
// Insights anteriores cujo fingerprint não reaparece somem em silêncio —
// inclusive os fixados. Essa é a política vigente (a condição que os
// criou deixou de valer), pendente de confirmação de produto.
func reconcile(candidates []domain.InsightCandidate, prior *domain.InsightRun) ([]domain.Insight, error) {
	type stateKey struct {
		insightType domain.InsightType
		fingerprint string
	}

	priorState := make(map[stateKey]domain.Insight)
	if prior != nil {
		for _, insight := range prior.Insights {
			priorState[stateKey{insight.Type, insight.Fingerprint}] = insight
		}
	}

	insights := make([]domain.Insight, 0, len(candidates))
	for _, candidate := range candidates {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, err
		}

		insight := domain.Insight{
			ID:                       id,
			Type:                     candidate.Type,
			Title:                    candidate.Title,
			Summary:                  candidate.Summary,
			SeverityScore:            candidate.SeverityScore,
			SupportingTransactionIDs: candidate.SupportingTransactionIDs,
			Fingerprint:              candidate.Fingerprint,
			Explanation:              candidate.Explanation,
		}

		if previous, ok := priorState[stateKey{candidate.Type, candidate.Fingerprint}]; ok {
			insight.Dismissed = previous.Dismissed
			insight.Pinned = previous.Pinned
		}

		insights = append(insights, insight)
	}

	return insights, nil
}

// UpdateInsightState aplica um patch de dismissed/pinned sobre um insight
// da execução mais recente. Retorna nil quando o insight não existe, não
// pertence ao usuário ou pertence a uma execução substituída — o chamador
// mapeia para 404. Nunca dispara regeneração.
func (s *Service) UpdateInsightState(userID, insightID string, patch domain.InsightStatePatch) (*domain.Insight, error) {
	insight, err := s.runRepo.GetInsightFromLatestRun(userID, insightID)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao buscar insight")
	}
	if insight == nil {
		return nil, nil
	}

	if patch.IsEmpty() {
		return insight, nil
	}

	dismissed, pinned := patch.Apply(insight.Dismissed, insight.Pinned)
	updated, err := s.runRepo.UpdateInsightState(userID, insightID, dismissed, pinned)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao atualizar estado do insight")
	}

	return updated, nil
}
