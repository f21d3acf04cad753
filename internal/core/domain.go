package core

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	MoodMin = -2
	MoodMax = 2
)

type (
	Role string

	// Date is a calendar day without a time component.
	Date struct {
		time.Time
	}

	// Transaction is a user-logged event: something that happened on a day,
	// what it cost, and how it felt. HappyAmount is computed by the server
	// from amount and mood; the client never re-derives it.
	Transaction struct {
		ID          string  `json:"id"`
		UserID      string  `json:"user_id"`
		Date        string  `json:"date"`
		Item        string  `json:"item"`
		Amount      int64   `json:"amount"`
		MoodScore   int     `json:"mood_score"`
		HappyAmount int64   `json:"happy_amount"`
		CreatedAt   *string `json:"created_at,omitempty"`
		UpdatedAt   *string `json:"updated_at,omitempty"`
	}

	// ChatMessage is one turn in a diary conversation.
	ChatMessage struct {
		Role    Role   `json:"role"`
		Content string `json:"content"`
	}

	// User is the authenticated session owner.
	User struct {
		UserID      string `json:"user_id"`
		DisplayName string `json:"display_name,omitempty"`
	}

	// DiaryEntry is a generated diary persisted for one transaction.
	// A transaction has at most one current diary; saving again overwrites.
	DiaryEntry struct {
		ID              string     `json:"id"`
		TxID            string     `json:"tx_id"`
		EventName       string     `json:"event_name"`
		DiaryTitle      string     `json:"diary_title"`
		DiaryBody       string     `json:"diary_body"`
		TransactionDate *time.Time `json:"transaction_date,omitempty"`
		CreatedAt       *time.Time `json:"created_at,omitempty"`
		UserID          string     `json:"user_id"`
	}
)

var (
	ErrEmptyItem       = errors.New("empty item")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNegativeAmount  = errors.New("negative amount")
	ErrInvalidMood     = errors.New("mood score out of range")
	ErrInvalidRole     = errors.New("invalid message role")
	ErrEmptyDiaryTitle = errors.New("empty diary title")
	ErrEmptyDiaryBody  = errors.New("empty diary body")
)

// NewDate creates a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, the wire and bucket-label format.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (t Transaction) Validate() error {
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if strings.TrimSpace(t.Item) == "" {
		return ErrEmptyItem
	}
	if t.Amount < 0 {
		return ErrNegativeAmount
	}
	if t.MoodScore < MoodMin || t.MoodScore > MoodMax {
		return ErrInvalidMood
	}
	return nil
}

func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return ErrInvalidRole
	}
}

// Summary is the one-line event description shown above the chat:
// date / item / amount / mood label.
func (t Transaction) Summary() string {
	return t.Date + " / " + t.Item + " / " + FormatSigned(t.Amount) + " / " + MoodLabel(t.MoodScore)
}
