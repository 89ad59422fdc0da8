// Package spamcheck defines the request and response types shared by the
// spam detection library and its consumers.
package spamcheck

import (
	"fmt"
	"strings"
)

// Request is a request to check a message for spam.
type Request struct {
	Msg      string `json:"msg"`       // message to check
	UserID   string `json:"user_id"`   // user id
	UserName string `json:"user_name"` // user name
	ChatID   string `json:"chat_id"`   // chat id, optional
}

func (r *Request) String() string {
	return fmt.Sprintf("msg:%q, user:%q, id:%s", r.Msg, r.UserName, r.UserID)
}

// Response is a result of a single spam check.
type Response struct {
	Name    string  `json:"name"`    // name of the check
	Spam    bool    `json:"spam"`    // true if spam
	Score   float64 `json:"score"`   // model probability in [0, 1], zero for non-model checks
	Details string  `json:"details"` // details of the check
	Error   error   `json:"-"`       // error message, if any. Do not serialize it
}

func (r *Response) String() string {
	spamOrHam := "ham"
	if r.Spam {
		spamOrHam = "spam"
	}
	return fmt.Sprintf("%s: %s, %s", r.Name, spamOrHam, r.Details)
}

// ChecksToString converts a slice of checks to a string
func ChecksToString(checks []Response) string {
	elems := []string{}
	for _, r := range checks {
		elems = append(elems, "{"+r.String()+"}")
	}
	return strings.Join(elems, ", ")
}
