package chat

import "strings"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CategoryOther is the fallback for unknown or missing categories.
const CategoryOther = "기타"

// Categories is the fixed set of question categories.
var Categories = []string{"글로벌셀링", "수출신고", "물류통관", "세무회계", "바이어발굴", "규격인증", CategoryOther}

func NormalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// Post is a question and its metadata. Body travels as "content" on the wire.
type Post struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Body      string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

// Message is one turn of a thread.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PostUpdate carries the fields an admin update replaces; nil fields are kept.
type PostUpdate struct {
	Title    *string
	Body     *string
	Category *string
}

type PostSummary struct {
	Post
	Answered bool `json:"answered"`
}

type PostDetail struct {
	Post
	Messages []Message `json:"messages"`
}

type Page struct {
	Items    []PostSummary `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}
