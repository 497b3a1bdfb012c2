// Package verify — telegram.go проверяет подписку через getChatMember.
package verify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// ChatMemberVerifier спрашивает у Telegram, состоит ли пользователь
// в канале задания.
type ChatMemberVerifier struct {
	bot *telego.Bot
}

// NewChatMemberVerifier создаёт верификатор поверх готового клиента.
func NewChatMemberVerifier(bot *telego.Bot) *ChatMemberVerifier {
	return &ChatMemberVerifier{bot: bot}
}

// VerifyMembership проверяет членство в канале.
// channelRef — имя канала из t.me-ссылки; сначала пробуем @username,
// при неудаче — числовой ID с префиксом -100 (приватные каналы).
func (v *ChatMemberVerifier) VerifyMembership(ctx context.Context, userID int64, channelRef string) (bool, error) {
	ref := strings.TrimPrefix(channelRef, "@")

	member, err := v.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{Username: "@" + ref},
		UserID: userID,
	})
	if err != nil {
		// Возможно, это числовой ID канала, а не username.
		id, perr := strconv.ParseInt(ref, 10, 64)
		if perr != nil {
			log.WithError(err).WithField("channel", channelRef).Warn("Проверка подписки не удалась")
			return false, fmt.Errorf("getChatMember: %w", err)
		}
		if id > 0 {
			// Каналы в Bot API адресуются с префиксом -100.
			id = -1_000_000_000_000 - id
		}
		member, err = v.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
			ChatID: telego.ChatID{ID: id},
			UserID: userID,
		})
		if err != nil {
			log.WithError(err).WithField("channel", channelRef).Warn("Проверка подписки не удалась")
			return false, fmt.Errorf("getChatMember: %w", err)
		}
	}

	switch member.MemberStatus() {
	case telego.MemberStatusCreator, telego.MemberStatusAdministrator, telego.MemberStatusMember:
		return true, nil
	default:
		return false, nil
	}
}
