// Package notify — telegram.go доставляет события в Telegram через telego.
// Адаптер сам превращает событие в текст: ядро про форматирование
// ничего не знает.
package notify

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// TelegramNotifier шлёт уведомления личными сообщениями.
type TelegramNotifier struct {
	bot *telego.Bot
}

// NewTelegramNotifier создаёт нотификатор поверх готового клиента.
func NewTelegramNotifier(bot *telego.Bot) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

// Notify отправляет событие пользователю. Отказ доставки (закрытый
// диалог, блок бота) логируется и глотается — операция ядра уже
// завершилась успехом независимо от судьбы уведомления.
func (n *TelegramNotifier) Notify(ctx context.Context, userID int64, event Event) {
	text := renderEvent(event)
	if text == "" {
		return
	}
	_, err := n.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: userID},
		Text:   text,
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"kind":    event.Kind(),
		}).Warn("Не удалось доставить уведомление")
	}
}

func renderEvent(event Event) string {
	switch e := event.(type) {
	case ReferralCredit:
		if e.Purchase {
			return fmt.Sprintf("🎉 Referral Bonus!\n\nYour referred user made a purchase!\nYou earned %s $MEGA!", e.Amount.StringFixed(2))
		}
		return fmt.Sprintf("🎉 New referral bonus! A new user joined using your link!\nYou received %s $MEGA!", e.Amount.StringFixed(2))
	case StreakMilestone:
		return fmt.Sprintf("🎉 Weekly Streak Bonus!\nYou've maintained a %d-day streak!\nBonus: +%s $MEGA", e.Streak, e.Bonus.StringFixed(2))
	case StreakBroken:
		return fmt.Sprintf("⚠️ Your %d-day streak was broken!\nKeep mining daily to maintain your streak!", e.Length)
	case AchievementUnlocked:
		return fmt.Sprintf("🏆 Achievement Unlocked!\n\n%s\n%s", e.Name, e.Description)
	case TaskVerificationFailed:
		return fmt.Sprintf("❌ Verification failed!\nPlease make sure you've joined the channel before claiming the reward.\nChannel link: %s", e.Link)
	case PurchaseConfirmed:
		return fmt.Sprintf("✅ Payment successful!\n\nPlan: %s\nDaily Mining Limit: %s $MEGA\nExpires in: %d days", e.PlanName, e.DailyLimit.StringFixed(0), int(e.ExpiresIn.Hours()/24))
	case SuspensionChanged:
		if e.Suspended {
			return "⚠️ Your account has been suspended due to suspicious activity. Please contact support if you think this is a mistake."
		}
		return "✅ Your account has been unsuspended. You can now continue mining."
	default:
		return ""
	}
}
