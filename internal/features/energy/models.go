// Package energy управляет энергопланами — платными тайм-лимитными
// «подписками», которые определяют дневной лимит майнинга.
// models.go описывает каталог планов.
package energy

import "github.com/shopspring/decimal"

// Plan — неизменяемая запись каталога энергопланов.
type Plan struct {
	ID          string          // Идентификатор ("max", "unlimited")
	Price       decimal.Decimal // Цена в Stars (XTR)
	DailyLimit  decimal.Decimal // Дневной лимит $MEGA (база награды за клейм)
	Name        string          // Отображаемое имя
	Description string          // Описание для витрины
}

// DefaultPlans возвращает стандартный каталог из двух планов.
// Каталог строится один раз при старте и дальше не мутирует.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:          "max",
			Price:       decimal.NewFromInt(50),
			DailyLimit:  decimal.NewFromInt(50),
			Name:        "Max Energy",
			Description: "50 $MEGA mining limit per day",
		},
		{
			ID:          "unlimited",
			Price:       decimal.NewFromInt(250),
			DailyLimit:  decimal.NewFromInt(150),
			Name:        "Unlimited Energy",
			Description: "150 $MEGA mining limit per day",
		},
	}
}
