package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/bfroz/tax-insights-api/infrastructure/database/postgres"
	"github.com/bfroz/tax-insights-api/internal/domain"
)

const (
	transactionsTable   = "transactions t"
	transactionsColumns = "t.id, t.user_id, t.date, t.merchant, t.description, t.total_amount, t.tax_amount, t.type"
)

// TransactionRepository é o provedor de janelas de transações do motor.
// O motor só lê: nenhuma operação aqui altera transações.
type TransactionRepository interface {
	ListByUserSince(userID string, from time.Time) ([]domain.Transaction, error)
	GetByIDs(userID string, ids []string) ([]domain.Transaction, error)
}

type transactionRepository struct {
	conn *postgres.Connection
}

func NewTransactionRepository(conn *postgres.Connection) TransactionRepository {
	return &transactionRepository{
		conn: conn,
	}
}

// ListByUserSince retorna a janela de transações do usuário a partir da
// data informada. A ordem é por data apenas por conveniência: o motor
// reordena e reagrupa internamente conforme cada detector precisa.
func (r *transactionRepository) ListByUserSince(userID string, from time.Time) ([]domain.Transaction, error) {
	query, args, err := squirrel.
		Select(transactionsColumns).
		From(transactionsTable).
		Where(squirrel.Eq{"t.user_id": userID}).
		Where(squirrel.GtOrEq{"t.date": from}).
		OrderBy("t.date ASC", "t.id ASC").
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

	return r.scanTransactions(rows)
}

// GetByIDs resolve um lote de IDs para o drill-down de insights.
// O filtro por user_id na própria query impede acesso entre usuários.
func (r *transactionRepository) GetByIDs(userID string, ids []string) ([]domain.Transaction, error) {
	if len(ids) == 0 {
		return []domain.Transaction{}, nil
	}

	query, args, err := squirrel.
		Select(transactionsColumns).
		From(transactionsTable).
		Where(squirrel.Eq{"t.user_id": userID}).
		Where(squirrel.Expr("t.id = ANY(?)", pq.Array(ids))).
		OrderBy("t.date ASC", "t.id ASC").
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

	return r.scanTransactions(rows)
}

func (r *transactionRepository) scanTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		var (
			tx          domain.Transaction
			merchant    sql.NullString
			description sql.NullString
		)

		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Date,
			&merchant,
			&description,
			&tx.TotalAmount,
			&tx.TaxAmount,
			&tx.Type,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear transação: %w", err)
		}

		if merchant.Valid {
			tx.Merchant = &merchant.String
		}
		if description.Valid {
			tx.Description = &description.String
		}

		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return transactions, nil
}
