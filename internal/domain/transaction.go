package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bucket usado para transações sem estabelecimento informado
const UnknownMerchant = "Unknown"

// TransactionType distingue despesas de receitas na janela analisada
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "EXPENSE"
	TransactionTypeIncome  TransactionType = "INCOME"
)

// Transaction é uma transação financeira do usuário dentro da janela de
// análise. Merchant e Description são opcionais na origem dos dados.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Date        time.Time       `json:"date"`
	Merchant    *string         `json:"merchant,omitempty"`
	Description *string         `json:"description,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Type        TransactionType `json:"type"`
}

// MerchantOrUnknown devolve o nome do estabelecimento para exibição,
// caindo no bucket "Unknown" quando ausente ou vazio
func (t Transaction) MerchantOrUnknown() string {
	if t.Merchant == nil || strings.TrimSpace(*t.Merchant) == "" {
		return UnknownMerchant
	}
	return *t.Merchant
}

// NormalizedMerchant devolve a chave de agrupamento do estabelecimento:
// minúscula e sem espaços nas pontas, para que "Uber " e "uber" caiam
// no mesmo grupo
func (t Transaction) NormalizedMerchant() string {
	return strings.ToLower(strings.TrimSpace(t.MerchantOrUnknown()))
}

// DescriptionOrEmpty devolve a descrição ou string vazia quando ausente
func (t Transaction) DescriptionOrEmpty() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// ContextFlag identifica um flag de contexto do usuário nas regras de
// dedução. Os valores batem com os nomes usados na tabela de regras.
type ContextFlag string

const (
	ContextFlagIsFreelancer       ContextFlag = "isFreelancer"
	ContextFlagWorksFromHome      ContextFlag = "worksFromHome"
	ContextFlagHasHealthInsurance ContextFlag = "hasHealthInsurance"
)

// UserContext carrega os flags de contexto do usuário em tri-state:
// nil significa "não informado", que é diferente de um false explícito —
// só o false explícito desqualifica regras que exigem o flag.
type UserContext struct {
	IsFreelancer       *bool `json:"isFreelancer,omitempty"`
	WorksFromHome      *bool `json:"worksFromHome,omitempty"`
	HasHealthInsurance *bool `json:"hasHealthInsurance,omitempty"`
}

// Flag devolve o valor tri-state do flag pedido
func (c UserContext) Flag(flag ContextFlag) *bool {
	switch flag {
	case ContextFlagIsFreelancer:
		return c.IsFreelancer
	case ContextFlagWorksFromHome:
		return c.WorksFromHome
	case ContextFlagHasHealthInsurance:
		return c.HasHealthInsurance
	}
	return nil
}
