package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"workspace-planner/internal/model"
	"workspace-planner/internal/service"
)

func (b *Bot) handleListSeries(ctx context.Context, msg *tgbotapi.Message) error {
	sess, err := b.ensureSession(ctx, msg.From)
	if err != nil {
		return err
	}

	var recs []model.Recurrence
	for _, workspaceID := range sess.scope {
		found, err := b.svc.Recurrences.ListByWorkspace(ctx, workspaceID)
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось получить серии: %s", escape(err.Error())))
		}
		recs = append(recs, found...)
	}
	if len(recs) == 0 {
		return b.sendText(msg.Chat.ID, "Повторяющихся серий нет. Создай задачу через /newtask и ответь «Да» на вопрос о повторе.")
	}

	var builder strings.Builder
	builder.WriteString("♻️ <b>Повторяющиеся серии</b>\n\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, rec := range recs {
		builder.WriteString(formatSeries(rec))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🛑 Остановить #%d", rec.ID), fmt.Sprintf("%s%d", cbStopPrefix, rec.ID)),
		))
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.api.Send(out)
	return err
}

func (b *Bot) handleStopSeries(ctx context.Context, msg *tgbotapi.Message) error {
	id, ok := commandID(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Укажи номер серии: /stopseries 3. Номера есть в /series.")
	}
	return b.askStopSeries(ctx, msg.Chat.ID, msg.From, id)
}

func (b *Bot) askStopSeries(ctx context.Context, chatID int64, from *tgbotapi.User, recurrenceID uint) error {
	sess, err := b.ensureSession(ctx, from)
	if err != nil {
		return err
	}
	rec, tasks, err := b.findSeries(ctx, sess, recurrenceID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendText(chatID, "Серия не найдена или уже остановлена.")
		}
		return err
	}

	_, future := service.PartitionByDueDate(tasks, time.Now())
	text := fmt.Sprintf("Остановить серию #%d?\n%s\nБудет удалено задач: %d из %d. Прошлые задачи останутся.",
		rec.ID, formatSeries(*rec), len(future), len(tasks))
	b.confirmations.set(from.ID, confirmationRequest{id: rec.ID, action: actionStopSeries})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) stopSeries(ctx context.Context, chatID int64, from *tgbotapi.User, recurrenceID uint) error {
	sess, err := b.ensureSession(ctx, from)
	if err != nil {
		return err
	}
	if _, _, err := b.findSeries(ctx, sess, recurrenceID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendTextWithRemove(chatID, "Серия не найдена или уже остановлена.")
		}
		return err
	}

	res, err := b.svc.Recurrences.Delete(ctx, recurrenceID, time.Now())
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	log.Printf("[info] series stopped id=%d user=%d removed=%d/%d", recurrenceID, sess.user.ID, res.DeletedFutureCount, res.TotalSeriesSize)

	text := fmt.Sprintf("🛑 Серия #%d остановлена: удалено %d из %d задач.", recurrenceID, res.DeletedFutureCount, res.TotalSeriesSize)
	if kept := res.TotalSeriesSize - res.DeletedFutureCount; kept > 0 {
		text += fmt.Sprintf(" Прошлые задачи (%d) сохранены.", kept)
	}
	return b.sendTextWithRemove(chatID, text)
}

// findSeries loads a recurrence that belongs to one of the session's
// workspaces.
func (b *Bot) findSeries(ctx context.Context, sess *session, recurrenceID uint) (*model.Recurrence, []model.Task, error) {
	rec, tasks, err := b.svc.Recurrences.Get(ctx, recurrenceID)
	if err != nil {
		return nil, nil, err
	}
	if !sess.scope.Contains(rec.WorkspaceID) {
		return nil, nil, service.ErrNotFound
	}
	return rec, tasks, nil
}
