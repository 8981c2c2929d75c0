package handler

import (
	"net/url"
	"strconv"

	"github.com/bfroz/tax-insights-api/internal/domain"
)

// parseUserContext monta o contexto tri-state a partir da query string:
// parâmetro ausente vira nil (não informado), que é diferente de um
// false explícito
func parseUserContext(query url.Values) domain.UserContext {
	return domain.UserContext{
		IsFreelancer:       parseBoolPtr(query.Get("is_freelancer")),
		WorksFromHome:      parseBoolPtr(query.Get("works_from_home")),
		HasHealthInsurance: parseBoolPtr(query.Get("has_health_insurance")),
	}
}

func parseBoolPtr(raw string) *bool {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

func parseFloatPtr(raw string) *float64 {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}
