package bot

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"workspace-planner/internal/model"
	"workspace-planner/internal/recurrence"
)

const (
	noCategory    = "Без категории"
	noCategoryKey = "__no_category__"
	iconDefault   = "🟢"
	iconDue       = "⏳"
	iconOverdue   = "⚠️"
	iconRecurring = "♻️"
)

func escape(s string) string {
	return html.EscapeString(s)
}

func formatTask(task model.Task, now time.Time) string {
	var b strings.Builder
	icon := iconDefault
	today := recurrence.DateOf(now)
	if task.DueDate != nil {
		due := recurrence.DateOf(*task.DueDate)
		if due.Before(today) {
			icon = iconOverdue
		} else if due.Sub(today) <= 48*time.Hour {
			icon = iconDue
		}
	}
	if task.IsRecurring() {
		icon += iconRecurring
	}
	b.WriteString(fmt.Sprintf("%s <b>#%d</b> %s\n", icon, task.ID, escape(normalizeTitle(task.Title))))
	if task.DueDate != nil {
		due := recurrence.DateOf(*task.DueDate)
		slot := ""
		if task.TimeSlot != "" {
			slot = " " + escape(task.TimeSlot)
		}
		if due.Before(today) {
			b.WriteString(fmt.Sprintf("   ⏰ Срок: %s%s · <b>просрочено</b>\n", due.Format(recurrence.DateLayout), slot))
		} else {
			daysLeft := int(due.Sub(today).Hours() / 24)
			b.WriteString(fmt.Sprintf("   ⏰ Срок: %s%s · осталось %d дн.\n", due.Format(recurrence.DateLayout), slot, daysLeft))
		}
	}
	if task.Description != "" {
		b.WriteString(fmt.Sprintf("   📝 %s\n", escape(task.Description)))
	}
	return b.String()
}

func formatSeries(rec model.Recurrence) string {
	description := rec.Type
	if rule, err := rec.Rule(); err == nil {
		description = describeRule(rule)
	}
	return fmt.Sprintf("%s <b>#%d</b> %s, с %s\n", iconRecurring, rec.ID, escape(description), rec.StartDate.Format(recurrence.DateLayout))
}

var weekdayShort = [...]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"}

// describeRule renders a rule in Russian, e.g. "каждые 2 нед. (пн, пт), 10 раз".
func describeRule(rule recurrence.Rule) string {
	var sb strings.Builder
	every := map[recurrence.Type][2]string{
		recurrence.TypeDaily:   {"каждый день", "дн."},
		recurrence.TypeCustom:  {"каждый день", "дн."},
		recurrence.TypeWeekly:  {"каждую неделю", "нед."},
		recurrence.TypeMonthly: {"каждый месяц", "мес."},
		recurrence.TypeYearly:  {"каждый год", "г."},
	}[rule.Type]
	if rule.Interval <= 1 {
		sb.WriteString(every[0])
	} else {
		sb.WriteString(fmt.Sprintf("каждые %d %s", rule.Interval, every[1]))
	}
	if rule.Type == recurrence.TypeWeekly && len(rule.WeeklyDays) > 0 {
		names := make([]string, 0, len(rule.WeeklyDays))
		for _, d := range rule.WeeklyDays {
			names = append(names, weekdayShort[d])
		}
		sb.WriteString(" (" + strings.Join(names, ", ") + ")")
	}
	switch rule.End.Kind {
	case recurrence.EndAfter:
		sb.WriteString(fmt.Sprintf(", %d раз", rule.End.Count))
	case recurrence.EndOn:
		sb.WriteString(", до " + rule.End.Date.Format(recurrence.DateLayout))
	}
	return sb.String()
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func normalizedCategory(categoryID *uint, catNames map[uint]string) (string, string) {
	if categoryID != nil {
		if name := strings.TrimSpace(catNames[*categoryID]); name != "" {
			return strings.ToLower(name), categoryLabel(name)
		}
	}
	return noCategoryKey, categoryLabel(noCategory)
}

func categoryLabel(name string) string {
	base := strings.TrimSpace(name)
	var icon string
	switch strings.ToLower(base) {
	case "учеба":
		icon = "🎓"
	case "работа":
		icon = "💼"
	case "покупки":
		icon = "🛒"
	case "здоровье":
		icon = "🩺"
	case "личное":
		icon = "🧩"
	case strings.ToLower(noCategory):
		icon = "📁"
	default:
		icon = "🏷️"
	}
	return fmt.Sprintf("%s %s", icon, escape(normalizeTitle(base)))
}
