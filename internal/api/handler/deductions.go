package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/bfroz/tax-insights-api/infrastructure/repository"
	"github.com/bfroz/tax-insights-api/internal/usecases/deducting"
	"github.com/bfroz/tax-insights-api/pkg/apiErrors"
	"github.com/bfroz/tax-insights-api/pkg/log"
)

// GetDeductionSummary roda o motor de deduções sobre a janela do usuário
// e devolve o resumo agregado por categoria
func GetDeductionSummary(engine *deducting.Engine, transactionRepo repository.TransactionRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userID := httprouter.ParamsFromContext(r.Context()).ByName("userId")
		if userID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "userId não informado", nil)
			return
		}

		rangeDays, err := parseRangeDays(r.URL.Query().Get("range_days"))
		if err != nil {
			logger.WithFields(log.Fields{
				"user_id":    userID,
				"range_days": r.URL.Query().Get("range_days"),
				"error":      err.Error(),
			}).Warn("deductions: invalid range_days parameter")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "range_days inválido", nil)
			return
		}

		userContext := parseUserContext(r.URL.Query())
		effectiveTaxRate := parseFloatPtr(r.URL.Query().Get("effective_tax_rate"))

		from := time.Now().AddDate(0, 0, -rangeDays)
		transactions, err := transactionRepo.ListByUserSince(userID, from)
		if err != nil {
			logger.WithFields(log.Fields{
				"user_id":    userID,
				"range_days": rangeDays,
				"error":      err.Error(),
			}).Error("deductions: failed to load transaction window")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "erro ao carregar transações", nil)
			return
		}

		summary := engine.BuildDeductionSummary(transactions, userContext, effectiveTaxRate)

		logger.WithFields(log.Fields{
			"user_id":    userID,
			"range_days": rangeDays,
			"categories": len(summary.Deductions),
		}).Info("deductions: summary built")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			logger.WithFields(log.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("deductions: failed to encode response")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
