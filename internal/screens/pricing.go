package screens

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"subscription_console/internal/config"
)

// Cycle - период оплаты на странице цен
type Cycle string

const (
	CycleMonthly Cycle = "monthly"
	CycleYearly  Cycle = "yearly"
)

func ParseCycle(s string) (Cycle, error) {
	switch Cycle(s) {
	case CycleMonthly, CycleYearly:
		return Cycle(s), nil
	case "":
		return CycleMonthly, nil
	}
	return "", fmt.Errorf("unknown billing cycle %q (want monthly or yearly)", s)
}

// Card - одна колонка страницы цен
type Card struct {
	Name        string
	Price       decimal.Decimal // цена в месяц для выбранного периода
	Currency    string
	Description string
	Features    []string
	Featured    bool
	CTA         string
	// SavingsPercent > 0 только для годовой оплаты
	SavingsPercent int64
}

func (c Card) PriceLabel() string {
	if c.Price.IsZero() {
		return "Free"
	}
	return c.Currency + c.Price.StringFixed(2) + "/mo"
}

// Pricing - единая страница цен; тарифы берутся из конфигурации
type Pricing struct {
	pricing config.Pricing
	cycle   Cycle
}

func NewPricing(d Deps) *Pricing {
	return &Pricing{pricing: d.Config.Pricing, cycle: CycleMonthly}
}

func (s *Pricing) Name() string { return "pricing" }

func (s *Pricing) Cycle() Cycle { return s.cycle }

func (s *Pricing) SetCycle(c Cycle) { s.cycle = c }

func (s *Pricing) Toggle() Cycle {
	if s.cycle == CycleMonthly {
		s.cycle = CycleYearly
	} else {
		s.cycle = CycleMonthly
	}
	return s.cycle
}

func (s *Pricing) Cards() []Card {
	return Cards(s.pricing, s.cycle)
}

// Cards строит колонки для периода. Годовая цена - помесячная при оплате за год.
func Cards(p config.Pricing, cycle Cycle) []Card {
	return lo.Map(p.Tiers, func(t config.Tier, _ int) Card {
		card := Card{
			Name:        t.Name,
			Price:       t.Monthly,
			Currency:    p.Currency,
			Description: t.Description,
			Features:    t.Features,
			Featured:    t.Featured,
			CTA:         t.CTA,
		}
		if cycle == CycleYearly {
			card.Price = t.Yearly
			card.SavingsPercent = SavingsPercent(t.Monthly, t.Yearly)
		}
		return card
	})
}

// SavingsPercent - округлённая скидка годовой оплаты относительно помесячной
func SavingsPercent(monthly, yearly decimal.Decimal) int64 {
	if !monthly.IsPositive() || yearly.GreaterThanOrEqual(monthly) {
		return 0
	}
	return decimal.NewFromInt(1).Sub(yearly.Div(monthly)).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *Pricing) Close() {}
