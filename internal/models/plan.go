package models

import "github.com/shopspring/decimal"

// Plan - тариф в каталоге. Единственный ключ - ID, имя может повторяться.
type Plan struct {
	ID          int64           `json:"id"`
	Type        PlanType        `json:"type"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Duration    PlanDuration    `json:"duration"`
	Description string          `json:"description"`
}

// PlanOptions - справочник для полей формы тарифа
type PlanOptions struct {
	Types     []string `json:"types"`
	Durations []string `json:"durations"`
}

// DefaultPlanOptions - если /api/plan-options недоступен, форма всё равно работает
func DefaultPlanOptions() PlanOptions {
	opts := PlanOptions{}
	for _, t := range PlanTypes {
		opts.Types = append(opts.Types, string(t))
	}
	for _, d := range PlanDurations {
		opts.Durations = append(opts.Durations, string(d))
	}
	return opts
}
