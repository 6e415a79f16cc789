package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/pool"

	"workspace-planner/internal/config"
	"workspace-planner/internal/model"
	"workspace-planner/internal/repository"
	"workspace-planner/internal/service"
)

// Services are the operations the bot drives.
type Services struct {
	Users       *repository.UserRepository
	Workspaces  *service.WorkspaceService
	Categories  *service.CategoryService
	Tasks       *service.TaskService
	Recurrences *service.RecurrenceService
	Reminders   *service.ReminderService
}

// session is the resolved identity behind a Telegram update.
type session struct {
	user      *model.User
	workspace *model.Workspace
	scope     service.Scope
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	svc           Services
	config        *config.Config
	conversations *dialogs[*conversationState]
	confirmations *dialogs[confirmationRequest]

	scheduler   *service.SchedulerService
	reportEntry cron.EntryID

	// mu guards the report schedule fields.
	mu sync.Mutex
}

func New(token string, svc Services, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		svc:           svc,
		config:        cfg,
		conversations: newDialogs[*conversationState](),
		confirmations: newDialogs[confirmationRequest](),
	}, nil
}

// ScheduleReports registers the periodic summary job. A fixed report time takes
// precedence over the interval.
func (b *Bot) ScheduleReports(scheduler *service.SchedulerService) error {
	id, err := scheduler.ScheduleReport(b.config.ReportTime, b.config.ReportInterval, b.runReports)
	if err != nil {
		return fmt.Errorf("schedule reports: %w", err)
	}
	b.mu.Lock()
	b.scheduler = scheduler
	b.reportEntry = id
	b.mu.Unlock()
	return nil
}

func (b *Bot) runReports() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.SendDailyReports(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[warn] report: %v", err)
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("[warn] handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("[warn] handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.resetDialogs(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён. Можно начать заново.")
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	if pending, ok := b.confirmations.get(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state, ok := b.conversations.get(msg.From.ID); ok {
		log.Printf("[info] conversation step %d from %d", state.stage, msg.From.ID)
		return b.handleConversation(ctx, msg, state)
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /newtask, чтобы добавить задачу, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "complete":
		return b.handleComplete(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "series":
		return b.handleListSeries(ctx, msg)
	case "stopseries":
		return b.handleStopSeries(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "interval":
		return b.handleInterval(msg)
	case "cancel":
		b.resetDialogs(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

const commandList = "• /newtask — добавить задачу пошагово (можно сделать повторяющейся)\n" +
	"• /tasks — открытые задачи с кнопками выполнения и удаления\n" +
	"• /complete &lt;id&gt; — отметить задачу выполненной\n" +
	"• /delete &lt;id&gt; — удалить одну задачу\n" +
	"• /series — повторяющиеся серии\n" +
	"• /stopseries &lt;id&gt; — остановить серию: будущие задачи удаляются, прошлые остаются\n" +
	"• /categories — список категорий\n" +
	"• /interval &lt;часы&gt; — как часто присылать отчёт\n" +
	"• /report — прислать отчёт сейчас\n" +
	"• /cancel — отменить текущий ввод"

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	sess, err := b.ensureSession(ctx, msg.From)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я планировщик задач: помогу не забыть разовые и повторяющиеся дела.</b>\n"+
			"Твоё пространство: <i>%s</i>\n\nКоманды:\n%s",
		escape(sess.user.DisplayName()), escape(sess.workspace.Name), commandList,
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Подсказки</b>\n"+commandList)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	sess, err := b.ensureSession(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.svc.Reminders.DailySummary(ctx, *sess.user, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сформировать отчёт: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

// reportWorkers bounds concurrent summary sends to stay under Telegram's
// per-bot rate limit.
const reportWorkers = 4

// SendDailyReports sends a summary to every known user. Failures for one user
// are logged and do not stop the others.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.svc.Users.ListAll(ctx)
	if err != nil {
		return err
	}
	now := time.Now()

	p := pool.New().WithMaxGoroutines(reportWorkers)
	for _, user := range users {
		if ctx.Err() != nil {
			break
		}
		p.Go(func() {
			text, err := b.svc.Reminders.DailySummary(ctx, user, now)
			if err != nil {
				log.Printf("[warn] build summary for user %d: %v", user.TelegramID, err)
				return
			}
			if err := b.sendText(user.TelegramID, text); err != nil {
				log.Printf("[warn] send summary to %d: %v", user.TelegramID, err)
			}
		})
	}
	p.Wait()
	return ctx.Err()
}

func (b *Bot) handleInterval(msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())

	b.mu.Lock()
	fixed := b.config.ReportTime
	current := b.config.ReportInterval
	b.mu.Unlock()

	if fixed != "" {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Отчёты приходят ежедневно в %s (REPORT_TIME), интервал не используется.", escape(fixed)))
	}
	if args == "" {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Текущий интервал отчётов: %d ч. Укажи число часов, например: /interval 4", int(current.Hours())))
	}
	hours, err := strconv.Atoi(args)
	if err != nil || hours <= 0 {
		return b.sendText(msg.Chat.ID, "Интервал должен быть положительным числом часов, например /interval 6")
	}

	interval := time.Duration(hours) * time.Hour
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scheduler != nil {
		id, err := b.scheduler.Replace(b.reportEntry, interval, b.runReports)
		if err != nil {
			return fmt.Errorf("reschedule reports: %w", err)
		}
		b.reportEntry = id
	}
	b.config.ReportInterval = interval
	log.Printf("[info] report interval set to %s by %d", interval, msg.From.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("Интервал уведомлений обновлён: каждые %d ч.", hours))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	sess, err := b.ensureSession(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.svc.Categories.List(ctx, sess.scope)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось получить категории: %s", escape(err.Error())))
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "Категории пока пусты. Добавь их при создании задачи.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Категории</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s\n", categoryLabel(cat.Name)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(msg.Text)) {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(ctx, msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, msg)
	case strings.ToLower(menuLabelSeries):
		return true, b.handleListSeries(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

// ensureSession upserts the Telegram user and makes sure they have a personal
// workspace.
func (b *Bot) ensureSession(ctx context.Context, from *tgbotapi.User) (*session, error) {
	user, err := b.svc.Users.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
	if err != nil {
		return nil, err
	}
	ws, err := b.svc.Workspaces.EnsurePersonal(ctx, user)
	if err != nil {
		return nil, err
	}
	scope, err := b.svc.Workspaces.Scope(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &session{user: user, workspace: ws, scope: scope}, nil
}

func (b *Bot) resetDialogs(userID int64) {
	b.conversations.drop(userID)
	b.confirmations.drop(userID)
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendWithReplyMarkup(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	if err := b.sendWithReplyMarkup(chatID, text, tgbotapi.NewRemoveKeyboard(true)); err != nil {
		return err
	}
	return b.sendWithReplyMarkup(chatID, "🔹 Главное меню", mainMenuKeyboard())
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}
