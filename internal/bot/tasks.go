package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"workspace-planner/internal/model"
	"workspace-planner/internal/recurrence"
	"workspace-planner/internal/repository"
	"workspace-planner/internal/service"
)

// listHorizonDays hides dated tasks further ahead than this from /tasks.
const listHorizonDays = 14

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
	cbStopPrefix     = "stop:"
)

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDelete
	actionStopSeries
)

// confirmationRequest is a pending yes/no question. id is a task ID, or a
// recurrence ID for actionStopSeries.
type confirmationRequest struct {
	id     uint
	action confirmationAction
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	sess, err := b.ensureSession(ctx, msg.From)
	if err != nil {
		return err
	}
	log.Printf("[info] list tasks for user=%d", sess.user.ID)
	return b.sendTaskList(ctx, msg.Chat.ID, sess)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, sess *session) error {
	tasks, err := b.svc.Tasks.List(ctx, repository.TaskFilter{WorkspaceIDs: sess.scope, OpenOnly: true})
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось получить задачи: %s", escape(err.Error())))
	}
	catNames, err := b.svc.Categories.Names(ctx, sess.scope)
	if err != nil {
		log.Printf("[warn] category names for user=%d: %v", sess.user.ID, err)
	}

	now := time.Now()
	visible, hidden := splitByHorizon(tasks, recurrence.DateOf(now).AddDate(0, 0, listHorizonDays+1))
	if len(visible) == 0 && hidden == 0 {
		return b.sendText(chatID, "У тебя нет открытых задач. Добавь новую через /newtask.")
	}

	type categoryGroup struct {
		name  string
		tasks []model.Task
	}
	groups := make(map[string]*categoryGroup)
	var order []string
	for _, task := range visible {
		key, display := normalizedCategory(task.CategoryID, catNames)
		group, ok := groups[key]
		if !ok {
			group = &categoryGroup{name: display}
			groups[key] = group
			order = append(order, key)
		}
		group.tasks = append(group.tasks, task)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i] == noCategoryKey {
			return false
		}
		if order[j] == noCategoryKey {
			return true
		}
		return groups[order[i]].name < groups[order[j]].name
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Текущие задачи</b>\n")
	builder.WriteString("Кнопки ниже отмечают задачу выполненной, удаляют её или останавливают серию.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, key := range order {
		group := groups[key]
		builder.WriteString(fmt.Sprintf("<b>%s</b>\n", group.name))
		for _, task := range group.tasks {
			builder.WriteString(formatTask(task, now))
			buttons = append(buttons, taskButtons(task))
		}
		builder.WriteByte('\n')
	}
	if hidden > 0 {
		builder.WriteString(fmt.Sprintf("…и ещё %d задач позже %d дней. Повторяющиеся серии — в /series.", hidden, listHorizonDays))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err = b.api.Send(msg)
	return err
}

// splitByHorizon keeps undated tasks and tasks due before horizon, and counts
// the rest.
func splitByHorizon(tasks []model.Task, horizon time.Time) (visible []model.Task, hidden int) {
	for _, task := range tasks {
		if task.DueDate != nil && !recurrence.DateOf(*task.DueDate).Before(horizon) {
			hidden++
			continue
		}
		visible = append(visible, task)
	}
	return visible, hidden
}

func taskButtons(task model.Task) []tgbotapi.InlineKeyboardButton {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Title, 18)), fmt.Sprintf("%s%d", cbCompletePrefix, task.ID)),
		tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, task.ID)),
	}
	if task.RecurrenceID != nil {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🛑 Серия", fmt.Sprintf("%s%d", cbStopPrefix, *task.RecurrenceID)))
	}
	return row
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, ok := commandID(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Укажи ID задачи: /complete 12")
	}
	return b.completeTask(ctx, msg.Chat.ID, msg.From, taskID)
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, ok := commandID(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Укажи ID задачи: /delete 12")
	}
	return b.deleteTask(ctx, msg.Chat.ID, msg.From, taskID)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("[warn] callback ack: %v", err)
	}

	prefix, id, ok := parseCallback(cb.Data)
	if !ok {
		return nil
	}
	log.Printf("[info] callback %s user=%d id=%d", strings.TrimSuffix(prefix, ":"), cb.From.ID, id)

	chatID := cb.Message.Chat.ID
	switch prefix {
	case cbCompletePrefix:
		return b.askTaskConfirmation(ctx, chatID, cb.From, id, actionComplete)
	case cbDeletePrefix:
		return b.askTaskConfirmation(ctx, chatID, cb.From, id, actionDelete)
	case cbStopPrefix:
		return b.askStopSeries(ctx, chatID, cb.From, id)
	}
	return nil
}

func (b *Bot) askTaskConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint, action confirmationAction) error {
	sess, err := b.ensureSession(ctx, from)
	if err != nil {
		return err
	}
	task, err := b.svc.Tasks.Get(ctx, sess.scope, taskID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendText(chatID, "Задача не найдена.")
		}
		return err
	}

	var text string
	switch action {
	case actionComplete:
		if task.IsCompleted() {
			return b.sendText(chatID, "Задача уже выполнена.")
		}
		text = fmt.Sprintf("Отметить задачу «%s» (#%d) как выполненную?", escape(normalizeTitle(task.Title)), task.ID)
	default:
		text = fmt.Sprintf("Удалить задачу «%s» (#%d)?", escape(normalizeTitle(task.Title)), task.ID)
		if task.IsRecurring() {
			text += "\nОстальные задачи серии останутся."
		}
	}
	b.confirmations.set(from.ID, confirmationRequest{id: task.ID, action: action})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.confirmations.drop(msg.From.ID)
		switch req.action {
		case actionDelete:
			return b.deleteTask(ctx, msg.Chat.ID, msg.From, req.id)
		case actionStopSeries:
			return b.stopSeries(ctx, msg.Chat.ID, msg.From, req.id)
		default:
			return b.completeTask(ctx, msg.Chat.ID, msg.From, req.id)
		}
	case isCancelInput(text):
		b.confirmations.drop(msg.From.ID)
		return b.sendTextWithRemove(msg.Chat.ID, "Отменено.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Подтверди или отмени действие.", confirmKeyboard())
	}
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	sess, err := b.ensureSession(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.svc.Tasks.Complete(ctx, sess.scope, taskID, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendTextWithRemove(chatID, "Задача не найдена или уже удалена.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	log.Printf("[info] task completed id=%d user=%d recurring=%t", task.ID, sess.user.ID, task.IsRecurring())
	info := fmt.Sprintf("✅ Задача «%s» выполнена.", escape(normalizeTitle(task.Title)))
	if err := b.sendTextWithRemove(chatID, info); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, sess)
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	sess, err := b.ensureSession(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.svc.Tasks.Get(ctx, sess.scope, taskID)
	if err == nil {
		err = b.svc.Tasks.Delete(ctx, sess.scope, taskID)
	}
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendTextWithRemove(chatID, "Задача не найдена или уже удалена.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	log.Printf("[info] task deleted id=%d user=%d", task.ID, sess.user.ID)
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Задача «%s» удалена.", escape(normalizeTitle(task.Title)))); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, sess)
}

// parseCallback splits inline button data into its prefix and numeric ID.
func parseCallback(data string) (string, uint, bool) {
	for _, prefix := range []string{cbCompletePrefix, cbDeletePrefix, cbStopPrefix} {
		if raw, ok := strings.CutPrefix(data, prefix); ok {
			id, ok := commandID(raw)
			return prefix, id, ok
		}
	}
	return "", 0, false
}

func commandID(raw string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}
