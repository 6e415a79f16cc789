package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"workspace-planner/internal/recurrence"
	"workspace-planner/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageCategory
	stageDueDate
	stageRepeat
	stageRepeatType
	stageRepeatInterval
	stageWeekdays
	stageRepeatEnd
)

type conversationState struct {
	stage    conversationStage
	category string
	req      service.CreateTaskRequest
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureSession(ctx, msg.From); err != nil {
		return err
	}
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.confirmations.drop(msg.From.ID)
	b.conversations.set(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новую задачу.\n<b>Шаг 1:</b> как её назвать?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "Название не может быть пустым.", cancelKeyboard())
		}
		state.req.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(chatID, "✏️ Добавь короткое описание (или нажми «Пропустить»).", skipKeyboard())

	case stageDescription:
		if !isSkipInput(text) {
			state.req.Description = text
		}
		state.stage = stageCategory
		return b.sendWithReplyMarkup(chatID, "🏷 Выбери категорию или отправь свою (можно «Пропустить»).", categoryKeyboard())

	case stageCategory:
		if !isSkipInput(text) {
			state.category = text
		}
		state.stage = stageDueDate
		return b.sendWithReplyMarkup(chatID, "⏰ Укажи срок в формате <code>2025-11-30</code> (или «Пропустить»).", skipKeyboard())

	case stageDueDate:
		if isSkipInput(text) {
			return b.finishTaskCreation(ctx, msg.From, state, chatID)
		}
		if _, err := recurrence.ParseDate(text); err != nil {
			return b.sendWithReplyMarkup(chatID, "Не могу распознать дату. Используй формат <code>2025-11-30</code> или «Пропустить».", skipKeyboard())
		}
		state.req.DueDate = &text
		state.stage = stageRepeat
		return b.sendWithReplyMarkup(chatID, "🔁 Сделать задачу повторяющейся?", yesNoKeyboard())

	case stageRepeat:
		switch {
		case isYesInput(text):
			state.req.HasRecurrence = true
			state.stage = stageRepeatType
			return b.sendWithReplyMarkup(chatID, "📆 Как часто повторять?", repeatTypeKeyboard())
		case isNoInput(text):
			return b.finishTaskCreation(ctx, msg.From, state, chatID)
		default:
			return b.sendWithReplyMarkup(chatID, "Нажми «Да» или «Нет».", yesNoKeyboard())
		}

	case stageRepeatType:
		kind, ok := parseRecurrenceType(text)
		if !ok {
			return b.sendWithReplyMarkup(chatID, "Выбери вариант на клавиатуре.", repeatTypeKeyboard())
		}
		state.req.Type = &kind
		state.stage = stageRepeatInterval
		return b.sendWithReplyMarkup(chatID, intervalPrompt(kind), skipKeyboard())

	case stageRepeatInterval:
		if !isSkipInput(text) {
			n, err := parseInterval(text)
			if err != nil {
				return b.sendWithReplyMarkup(chatID,
					fmt.Sprintf("Шаг должен быть целым числом от 1 до %d.", recurrence.MaxInterval), skipKeyboard())
			}
			state.req.Interval = &n
		}
		if *state.req.Type == string(recurrence.TypeWeekly) {
			state.stage = stageWeekdays
			return b.sendWithReplyMarkup(chatID,
				"📅 В какие дни недели? Например: <code>пн, ср, пт</code>. «Пропустить» — в тот же день, что и первая задача.",
				skipKeyboard())
		}
		state.stage = stageRepeatEnd
		return b.sendWithReplyMarkup(chatID, endPrompt, repeatEndKeyboard())

	case stageWeekdays:
		if !isSkipInput(text) {
			days, err := parseWeekdays(text)
			if err != nil {
				return b.sendWithReplyMarkup(chatID, fmt.Sprintf("%s. Пример: <code>пн, ср, пт</code>.", escape(err.Error())), skipKeyboard())
			}
			state.req.WeeklyDays = days
		}
		state.stage = stageRepeatEnd
		return b.sendWithReplyMarkup(chatID, endPrompt, repeatEndKeyboard())

	case stageRepeatEnd:
		end, err := parseEndCondition(text)
		if err != nil {
			return b.sendWithReplyMarkup(chatID, escape(err.Error()), repeatEndKeyboard())
		}
		state.req.EndType = &end.kind
		state.req.EndCount = end.count
		state.req.EndDate = end.date
		return b.finishTaskCreation(ctx, msg.From, state, chatID)

	default:
		b.conversations.drop(msg.From.ID)
		return b.sendText(chatID, "Диалог сброшен. Попробуй ещё раз через /newtask.")
	}
}

const endPrompt = "🏁 Когда закончить? «Никогда», число повторений (например <code>10</code>) или дата <code>2025-12-31</code> (сама дата не входит)."

func intervalPrompt(kind string) string {
	unit := map[string]string{
		string(recurrence.TypeDaily):   "дней",
		string(recurrence.TypeWeekly):  "недель",
		string(recurrence.TypeMonthly): "месяцев",
		string(recurrence.TypeYearly):  "лет",
		string(recurrence.TypeCustom):  "дней",
	}[kind]
	return fmt.Sprintf("🔢 Через сколько %s повторять? По умолчанию 1 («Пропустить»).", unit)
}

func (b *Bot) finishTaskCreation(ctx context.Context, from *tgbotapi.User, state *conversationState, chatID int64) error {
	b.conversations.drop(from.ID)

	sess, err := b.ensureSession(ctx, from)
	if err != nil {
		return err
	}

	req := state.req
	req.WorkspaceID = sess.workspace.ID
	if state.category != "" {
		categoryID, err := b.svc.Categories.Resolve(ctx, sess.workspace.ID, state.category)
		if err != nil {
			return b.sendTextWithRemove(chatID, fmt.Sprintf("Не удалось сохранить категорию: %s", escape(err.Error())))
		}
		req.CategoryID = categoryID
	}

	res, err := b.svc.Tasks.Create(ctx, req)
	if err != nil {
		if errors.Is(err, recurrence.ErrInvalidRule) || errors.Is(err, service.ErrInvalidInput) {
			return b.sendTextWithRemove(chatID, fmt.Sprintf("Не удалось сохранить задачу: %s", escape(err.Error())))
		}
		return err
	}

	tasks := res.Tasks()
	first := tasks[0]
	log.Printf("[info] task created id=%d user=%d instances=%d", first.ID, sess.user.ID, len(tasks))

	var summary strings.Builder
	summary.WriteString("✅ <b>Задача сохранена</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(normalizeTitle(first.Title))))
	if first.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Описание:</b> %s\n", escape(first.Description)))
	}
	if state.category != "" {
		summary.WriteString(fmt.Sprintf("• <b>Категория:</b> %s\n", categoryLabel(state.category)))
	}
	if first.DueDate != nil {
		summary.WriteString(fmt.Sprintf("• <b>Срок:</b> %s\n", first.DueDate.Format(recurrence.DateLayout)))
	}
	if res.Series != nil {
		rec := res.Series.Recurrence
		if rule, err := rec.Rule(); err == nil {
			summary.WriteString(fmt.Sprintf("• <b>Повтор:</b> %s (серия #%d)\n", describeRule(rule), rec.ID))
		}
		summary.WriteString(fmt.Sprintf("• <b>Создано задач:</b> %d", res.Series.CreatedCount))
		if res.Series.Capped {
			summary.WriteString(fmt.Sprintf(" (достигнут лимит %d)", b.svc.Recurrences.MaxInstances()))
		}
		summary.WriteByte('\n')
	} else {
		summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", first.ID))
	}

	if err := b.sendWithReplyMarkup(chatID, strings.TrimSpace(summary.String()), tgbotapi.NewRemoveKeyboard(true)); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, sess)
}

// parseRecurrenceType maps button labels and free text onto a recurrence type.
func parseRecurrenceType(text string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case strings.ToLower(btnDaily), "ежедневно", "daily":
		return string(recurrence.TypeDaily), true
	case strings.ToLower(btnWeekly), "еженедельно", "weekly":
		return string(recurrence.TypeWeekly), true
	case strings.ToLower(btnMonthly), "ежемесячно", "monthly":
		return string(recurrence.TypeMonthly), true
	case strings.ToLower(btnYearly), "ежегодно", "yearly":
		return string(recurrence.TypeYearly), true
	case strings.ToLower(btnCustom), "custom":
		return string(recurrence.TypeCustom), true
	}
	return "", false
}

var weekdayNames = map[string]int{
	"вс": 0, "воскресенье": 0, "sun": 0, "sunday": 0,
	"пн": 1, "понедельник": 1, "mon": 1, "monday": 1,
	"вт": 2, "вторник": 2, "tue": 2, "tuesday": 2,
	"ср": 3, "среда": 3, "wed": 3, "wednesday": 3,
	"чт": 4, "четверг": 4, "thu": 4, "thursday": 4,
	"пт": 5, "пятница": 5, "fri": 5, "friday": 5,
	"сб": 6, "суббота": 6, "sat": 6, "saturday": 6,
}

func parseInterval(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > recurrence.MaxInterval {
		return 0, fmt.Errorf("шаг должен быть целым числом от 1 до %d", recurrence.MaxInterval)
	}
	return n, nil
}

// parseWeekdays reads a list like "пн, ср пт" or "1,3,5" into weekday indices
// (0 = Sunday).
func parseWeekdays(text string) ([]int, error) {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '/'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("не указаны дни недели")
	}
	days := make([]int, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSuffix(field, ".")
		if d, ok := weekdayNames[field]; ok {
			days = append(days, d)
			continue
		}
		d, err := strconv.Atoi(field)
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("не понимаю день «%s»", field)
		}
		days = append(days, d)
	}
	return days, nil
}

type endChoice struct {
	kind  string
	count *int
	date  *string
}

// parseEndCondition accepts "никогда", a repetition count or an end date.
func parseEndCondition(text string) (endChoice, error) {
	value := strings.ToLower(strings.TrimSpace(text))
	switch value {
	case "", strings.ToLower(btnNever), "никогда", "never", "-":
		return endChoice{kind: string(recurrence.EndNever)}, nil
	}
	if isSkipInput(value) {
		return endChoice{kind: string(recurrence.EndNever)}, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n < 1 {
			return endChoice{}, fmt.Errorf("число повторений должно быть не меньше 1")
		}
		return endChoice{kind: string(recurrence.EndAfter), count: &n}, nil
	}
	if _, err := recurrence.ParseDate(value); err == nil {
		return endChoice{kind: string(recurrence.EndOn), date: &value}, nil
	}
	return endChoice{}, fmt.Errorf("нужно «Никогда», число повторений или дата в формате 2025-12-31")
}
