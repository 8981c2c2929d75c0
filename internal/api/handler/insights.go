package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/bfroz/tax-insights-api/internal/domain"
	"github.com/bfroz/tax-insights-api/internal/usecases/insighting"
	"github.com/bfroz/tax-insights-api/pkg/apiErrors"
	"github.com/bfroz/tax-insights-api/pkg/log"
)

const defaultRangeDays = 30

// GetInsights devolve os insights da janela do usuário, regenerando o
// conjunto quando o TTL expirou ou quando force_refresh=true
func GetInsights(service insighting.Insighter) http.Handler {
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
			}).Warn("insights: invalid range_days parameter")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "range_days inválido", nil)
			return
		}

		opts := insighting.QueryOptions{
			ForceRefresh: r.URL.Query().Get("force_refresh") == "true",
			UserContext:  parseUserContext(r.URL.Query()),
		}

		logger.WithFields(log.Fields{
			"user_id":    userID,
			"range_days": rangeDays,
		}).Info("insights: fetching insights for user window")

		result, err := service.GetInsights(userID, rangeDays, opts)
		if err != nil {
			logger.WithFields(log.Fields{
				"user_id":    userID,
				"range_days": rangeDays,
				"error":      err.Error(),
			}).Error("insights: failed to get insights for user")

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "erro ao gerar insights", nil)
			return
		}

		logger.WithFields(log.Fields{
			"user_id":  userID,
			"run_id":   result.RunID,
			"insights": len(result.Insights),
			"cached":   result.FromCache,
		}).Info("insights: successfully retrieved insights")

		w.Header().Set("Content-Type", "application/json")
		if result.FromCache {
			// O TTL é brando: sinaliza ao cliente que pode servir o
			// conteúdo enquanto revalida
			w.Header().Set("Cache-Control", "max-age=60, stale-while-revalidate")
		}

		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithFields(log.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("insights: failed to encode response")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// UpdateInsightState aplica o PATCH de dismissed/pinned em um insight da
// execução mais recente. Nunca dispara regeneração.
func UpdateInsightState(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		params := httprouter.ParamsFromContext(r.Context())
		userID := params.ByName("userId")
		insightID := params.ByName("insightId")
		if userID == "" || insightID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "userId e insightId são obrigatórios", nil)
			return
		}

		patch := domain.InsightStatePatch{}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			logger.WithFields(log.Fields{
				"user_id":    userID,
				"insight_id": insightID,
				"error":      err.Error(),
			}).Warn("insights: invalid state patch body")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "corpo da requisição inválido", nil)
			return
		}

		if patch.IsEmpty() {
			apiErrors.WriteError(w, apiErrors.ErrEmptyStatePatch, "informe dismissed e/ou pinned", nil)
			return
		}

		insight, err := service.UpdateInsightState(userID, insightID, patch)
		if err != nil {
			logger.WithFields(log.Fields{
				"user_id":    userID,
				"insight_id": insightID,
				"error":      err.Error(),
			}).Error("insights: failed to update insight state")

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "erro ao atualizar estado do insight", nil)
			return
		}

		// nil é o sentinela de "não encontrado ou não é seu": responde 404
		// sem distinguir os casos
		if insight == nil {
			apiErrors.WriteError(w, apiErrors.ErrInsightNotFound, "insight não encontrado", nil)
			return
		}

		logger.WithFields(log.Fields{
			"user_id":    userID,
			"insight_id": insightID,
		}).Info("insights: insight state updated")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(insight); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func parseRangeDays(raw string) (int, error) {
	if raw == "" {
		return defaultRangeDays, nil
	}

	var rangeDays int
	if _, err := fmt.Sscanf(raw, "%d", &rangeDays); err != nil {
		return 0, err
	}
	if rangeDays <= 0 {
		return 0, fmt.Errorf("range_days deve ser positivo: %d", rangeDays)
	}
	return rangeDays, nil
}
