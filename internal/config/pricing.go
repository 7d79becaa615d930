package config

import "github.com/shopspring/decimal"

// Pricing - витрина тарифов. Все варианты страницы цен строятся из неё.
type Pricing struct {
	Currency string `yaml:"currency"`
	Tiers    []Tier `yaml:"tiers"`
}

type Tier struct {
	Name        string          `yaml:"name"`
	Monthly     decimal.Decimal `yaml:"monthly"`
	Yearly      decimal.Decimal `yaml:"yearly"`
	Description string          `yaml:"description"`
	Features    []string        `yaml:"features"`
	Featured    bool            `yaml:"featured"`
	CTA         string          `yaml:"cta"`
}

func DefaultPricing() Pricing {
	return Pricing{
		Currency: "$",
		Tiers: []Tier{
			{
				Name:        "Free",
				Monthly:     decimal.Zero,
				Yearly:      decimal.Zero,
				Description: "Ideal for trying out basic features",
				Features:    []string{"Track up to 3 subscriptions", "Basic analytics", "Email support", "Web access only", "Limited history (30 days)"},
				CTA:         "Get Started",
			},
			{
				Name:        "Basic",
				Monthly:     decimal.RequireFromString("4.99"),
				Yearly:      decimal.RequireFromString("3.99"),
				Description: "Perfect for individuals",
				Features:    []string{"Track up to 10 subscriptions", "Basic analytics", "Email support", "Web & mobile access", "1 year history", "Basic reports"},
				CTA:         "Start Free Trial",
			},
			{
				Name:        "Pro",
				Monthly:     decimal.RequireFromString("9.99"),
				Yearly:      decimal.RequireFromString("7.99"),
				Description: "Ideal for power users and small teams",
				Features:    []string{"Unlimited subscriptions", "Advanced analytics", "Priority support", "Export data", "Team members (up to 5)", "Unlimited history"},
				Featured:    true,
				CTA:         "Start Free Trial",
			},
			{
				Name:        "Business",
				Monthly:     decimal.RequireFromString("19.99"),
				Yearly:      decimal.RequireFromString("15.99"),
				Description: "For growing teams and businesses",
				Features:    []string{"Everything in Pro", "Team workspace", "Team members (up to 15)", "Dedicated support", "API access"},
				CTA:         "Start Free Trial",
			},
			{
				Name:        "Enterprise",
				Monthly:     decimal.RequireFromString("49.99"),
				Yearly:      decimal.RequireFromString("39.99"),
				Description: "For large organizations",
				Features:    []string{"Everything in Business", "Unlimited team members", "Dedicated account manager", "Custom SLAs", "24/7 priority support"},
				CTA:         "Contact Sales",
			},
		},
	}
}
