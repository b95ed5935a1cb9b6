package app

import (
	"fmt"
	"time"

	"exam-prep-service/internal/domain"
)

const dateLayout = "2006-01-02"

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns Monday 00:00 of t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func DailyPeriodKey(t time.Time) string {
	return "DAILY:" + t.Format(dateLayout)
}

func WeeklyPeriodKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("WEEKLY:%d-W%02d", year, week)
}

// PeriodKey is the idempotency key of the contest of the given type covering t.
func PeriodKey(contestType domain.ContestType, t time.Time) string {
	if contestType == domain.ContestWeekly {
		return WeeklyPeriodKey(t)
	}
	return DailyPeriodKey(t)
}

// contestPlan holds everything about a contest that depends only on its type and period.
type contestPlan struct {
	contestType domain.ContestType
	periodKey   string
	count       int
	date        string
	week        int
	year        int
	start       time.Time
	end         time.Time
	title       string
	description string
}

func planContest(contestType domain.ContestType, now time.Time) contestPlan {
	day := StartOfDay(now)
	date := day.Format(dateLayout)

	if contestType == domain.ContestWeekly {
		year, week := now.ISOWeek()
		start := StartOfWeek(now)
		return contestPlan{
			contestType: contestType,
			periodKey:   WeeklyPeriodKey(now),
			count:       WeeklyQuestionCount,
			date:        date,
			week:        week,
			year:        year,
			start:       start,
			end:         start.AddDate(0, 0, 7),
			title:       fmt.Sprintf("Weekly Challenge - Week %d, %d", week, year),
			description: "Take on the weekly challenge! Compete with others for the top spot on the leaderboard.",
		}
	}

	return contestPlan{
		contestType: domain.ContestDaily,
		periodKey:   DailyPeriodKey(now),
		count:       DailyQuestionCount,
		date:        date,
		year:        day.Year(),
		start:       day,
		end:         day.AddDate(0, 0, 1),
		title:       "Daily Challenge - " + date,
		description: "Test your knowledge with today's daily challenge! New questions every day at 12:00 AM.",
	}
}
