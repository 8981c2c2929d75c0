package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/bfroz/tax-insights-api/infrastructure/database/postgres"
	"github.com/bfroz/tax-insights-api/internal/domain"
)

const (
	insightRunsTable = "insight_runs ir"
	insightsTable    = "insights i"
	insightsColumns  = "i.id, i.run_id, i.type, i.title, i.summary, i.severity_score, i.supporting_transaction_ids, i.fingerprint, i.explanation, i.dismissed, i.pinned"
)

// InsightRunRepository persiste execuções do pipeline e o estado
// aplicado pelo usuário. Todas as consultas são escopadas por user_id na
// própria query: acesso entre usuários é estruturalmente impossível.
type InsightRunRepository interface {
	GetLatestRun(userID string, rangeDays int) (*domain.InsightRun, error)
	SaveRun(run *domain.InsightRun) error
	GetInsightFromLatestRun(userID, insightID string) (*domain.Insight, error)
	UpdateInsightState(userID, insightID string, dismissed, pinned bool) (*domain.Insight, error)
	DeleteSupersededOlderThan(days int) (int64, error)
}

type insightRunRepository struct {
	conn *postgres.Connection
}

func NewInsightRunRepository(conn *postgres.Connection) InsightRunRepository {
	return &insightRunRepository{
		conn: conn,
	}
}

// GetLatestRun retorna a execução mais recente para (usuário, janela)
// com seus insights na ordem persistida, ou nil se nunca houve execução
func (r *insightRunRepository) GetLatestRun(userID string, rangeDays int) (*domain.InsightRun, error) {
	query, args, err := squirrel.
		Select("ir.id, ir.user_id, ir.range_days, ir.created_at").
		From(insightRunsTable).
		Where(squirrel.Eq{"ir.user_id": userID, "ir.range_days": rangeDays}).
		OrderBy("ir.created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	run := &domain.InsightRun{}
	row := r.conn.QueryRow(query, args...)
	if err := row.Scan(&run.ID, &run.UserID, &run.RangeDays, &run.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear execução de insights: %w", err)
	}

	insights, err := r.listInsightsByRun(run.ID)
	if err != nil {
		return nil, err
	}
	run.Insights = insights

	return run, nil
}

// SaveRun persiste a execução e seus insights em uma única transação.
// A posição de cada insight é gravada para que leituras subsequentes
// devolvam exatamente a mesma ordem.
func (r *insightRunRepository) SaveRun(run *domain.InsightRun) error {
	return r.conn.RunInTransaction(context.Background(), func(tx *sql.Tx) error {
		insertRun, args, err := squirrel.
			Insert("insight_runs").
			Columns("id", "user_id", "range_days", "created_at").
			Values(run.ID, run.UserID, run.RangeDays, run.CreatedAt).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		if _, err := tx.Exec(insertRun, args...); err != nil {
			return fmt.Errorf("erro ao inserir execução de insights: %w", err)
		}

		for position, insight := range run.Insights {
			explanation, err := json.Marshal(insight.Explanation)
			if err != nil {
				return fmt.Errorf("erro ao serializar explicação do insight: %w", err)
			}

			insertInsight, args, err := squirrel.
				Insert("insights").
				Columns(
					"id", "run_id", "user_id", "position", "type", "title", "summary",
					"severity_score", "supporting_transaction_ids", "fingerprint",
					"explanation", "dismissed", "pinned",
				).
				Values(
					insight.ID, run.ID, run.UserID, position, insight.Type, insight.Title,
					insight.Summary, insight.SeverityScore, pq.Array(insight.SupportingTransactionIDs),
					insight.Fingerprint, explanation, insight.Dismissed, insight.Pinned,
				).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("erro ao construir a query: %w", err)
			}

			if _, err := tx.Exec(insertInsight, args...); err != nil {
				return fmt.Errorf("erro ao inserir insight: %w", err)
			}
		}

		return nil
	})
}

// GetInsightFromLatestRun busca um insight pelo ID, mas somente se ele
// pertence à execução mais recente do seu (usuário, janela). Insights de
// execuções substituídas respondem como inexistentes.
func (r *insightRunRepository) GetInsightFromLatestRun(userID, insightID string) (*domain.Insight, error) {
	query, args, err := squirrel.
		Select(insightsColumns).
		From(insightsTable).
		Join("insight_runs ir ON ir.id = i.run_id").
		Where(squirrel.Eq{"i.id": insightID, "i.user_id": userID}).
		Where(squirrel.Expr(
			`NOT EXISTS (
				SELECT 1 FROM insight_runs newer
				WHERE newer.user_id = ir.user_id
				AND newer.range_days = ir.range_days
				AND newer.created_at > ir.created_at
			)`,
		)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)
	insight, err := r.scanInsight(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear insight: %w", err)
	}

	return insight, nil
}

// UpdateInsightState grava os flags já resolvidos (a exclusão mútua é
// aplicada pelo caso de uso antes de chegar aqui)
func (r *insightRunRepository) UpdateInsightState(userID, insightID string, dismissed, pinned bool) (*domain.Insight, error) {
	query, args, err := squirrel.
		Update("insights").
		Set("dismissed", dismissed).
		Set("pinned", pinned).
		Where(squirrel.Eq{"id": insightID, "user_id": userID}).
		Suffix("RETURNING id, run_id, type, title, summary, severity_score, supporting_transaction_ids, fingerprint, explanation, dismissed, pinned").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)
	insight, err := r.scanInsight(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao atualizar estado do insight: %w", err)
	}

	return insight, nil
}

// DeleteSupersededOlderThan remove execuções substituídas mais antigas
// que o corte. A execução mais recente de cada (usuário, janela) nunca é
// removida, preservando a janela de auditoria.
func (r *insightRunRepository) DeleteSupersededOlderThan(days int) (int64, error) {
	query, args, err := squirrel.
		Delete("insight_runs").
		Where(squirrel.Expr("created_at < NOW() - MAKE_INTERVAL(days => ?)", days)).
		Where(squirrel.Expr(
			`EXISTS (
				SELECT 1 FROM insight_runs newer
				WHERE newer.user_id = insight_runs.user_id
				AND newer.range_days = insight_runs.range_days
				AND newer.created_at > insight_runs.created_at
			)`,
		)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao remover execuções antigas: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao contar execuções removidas: %w", err)
	}

	return deleted, nil
}

func (r *insightRunRepository) listInsightsByRun(runID string) ([]domain.Insight, error) {
	query, args, err := squirrel.
		Select(insightsColumns).
		From(insightsTable).
		Where(squirrel.Eq{"i.run_id": runID}).
		OrderBy("i.position ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	insights := make([]domain.Insight, 0)
	for rows.Next() {
		insight, err := r.scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear insights: %w", err)
		}
		insights = append(insights, *insight)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return insights, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *insightRunRepository) scanInsight(row rowScanner) (*domain.Insight, error) {
	insight := &domain.Insight{}
	var (
		supportingIDs pq.StringArray
		explanation   []byte
	)

	err := row.Scan(
		&insight.ID,
		&insight.RunID,
		&insight.Type,
		&insight.Title,
		&insight.Summary,
		&insight.SeverityScore,
		&supportingIDs,
		&insight.Fingerprint,
		&explanation,
		&insight.Dismissed,
		&insight.Pinned,
	)
	if err != nil {
		return nil, err
	}

	insight.SupportingTransactionIDs = supportingIDs
	if len(explanation) > 0 {
		if err := json.Unmarshal(explanation, &insight.Explanation); err != nil {
			return nil, fmt.Errorf("erro ao desserializar explicação do insight: %w", err)
		}
	}

	return insight, nil
}
