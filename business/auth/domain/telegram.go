package domain

import (
	"strconv"
	"time"
)

// TelegramStatus reports whether the account receives alerts on Telegram.
type TelegramStatus struct {
	Linked bool   `json:"linked"`
	ChatID *int64 `json:"chat_id"`
}

// ChatLabel is the linked chat id, or empty.
func (s TelegramStatus) ChatLabel() string {
	if !s.Linked || s.ChatID == nil {
		return ""
	}
	return strconv.FormatInt(*s.ChatID, 10)
}

// TelegramLink is a one-time token the user sends to the bot to link the
// chat. ExpiresIn is in seconds.
type TelegramLink struct {
	Token        string `json:"token"`
	ExpiresIn    int    `json:"expires_in"`
	BotURL       string `json:"bot_url"`
	Instructions string `json:"instructions"`
}

// Expiry is when the token stops being accepted, counted from issued.
func (l TelegramLink) Expiry(issued time.Time) time.Time {
	return issued.Add(time.Duration(l.ExpiresIn) * time.Second)
}

// Notice is the acknowledgement the server sends for unlink and test.
type Notice struct {
	Message string `json:"message"`
}
