// Package metrics публикует prometheus-счётчики ключевых операций ядра.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsTotal — попытки клейма по исходу
	// (accepted / cooldown / no_plan / suspended).
	ClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mining_claims_total",
		Help: "Claim attempts by outcome",
	}, []string{"outcome"})

	// JackpotsTotal — сколько раз выпал джекпот.
	JackpotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mining_jackpots_total",
		Help: "Jackpot draws that paid out",
	})

	// TasksCompletedTotal — выплаченные задания.
	TasksCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasks_completed_total",
		Help: "Sponsor tasks paid out",
	})

	// ReferralCreditsTotal — реферальные начисления по типу
	// (signup / purchase).
	ReferralCreditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "referral_credits_total",
		Help: "Referral credits by type",
	}, []string{"type"})

	// PurchasesTotal — активации энергопланов по плану.
	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_purchases_total",
		Help: "Energy plan activations by plan",
	}, []string{"plan"})
)
