package models

import (
	"strings"
	"time"
	"unicode"
)

// PostCategory is the board tab a post belongs to. It follows the author's role.
type PostCategory string

const (
	PostMentorNews PostCategory = "mentor_news"
	PostQuestion   PostCategory = "question"
)

// Valid reports whether c is a known board tab.
func (c PostCategory) Valid() bool {
	return c == PostMentorNews || c == PostQuestion
}

// PostCategoryFor picks the board tab for an author role.
func PostCategoryFor(role Role) PostCategory {
	if role == RoleMentor {
		return PostMentorNews
	}
	return PostQuestion
}

// SearchWindow is how many of the newest posts a keyword search scans.
const SearchWindow = 200

// Post is a board entry.
type Post struct {
	ID         string       `json:"id"`
	Category   PostCategory `json:"category"`
	Topic      Category     `json:"topic"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	ImageURL   string       `json:"imageUrl,omitempty"`
	AuthorID   string       `json:"authorId"`
	AuthorName string       `json:"authorName"`
	AuthorRole Role         `json:"authorRole"`
	Likes      []string     `json:"likes"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Normalize fills defaults once after retrieval.
func (p *Post) Normalize() *Post {
	if p == nil {
		return nil
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if !p.Category.Valid() {
		p.Category = PostCategoryFor(p.AuthorRole)
	}
	p.Topic = p.Topic.Normalize()
	return p
}

// Comment belongs to exactly one post. Append-only.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	AuthorRole Role      `json:"authorRole"`
	CreatedAt  time.Time `json:"createdAt"`
	Seq        int64     `json:"-"`
}

// PostFilter narrows a board listing.
type PostFilter struct {
	Category PostCategory
	Major    string
	Offset   uint64
	Limit    int
}

// NormalizeSearchText lowercases s, turns every rune that is not a letter
// or digit into a space and collapses whitespace runs.
func NormalizeSearchText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MatchesKeyword reports whether any token of the normalized keyword occurs
// in the normalized title. An empty keyword matches nothing.
func MatchesKeyword(title, keyword string) bool {
	tokens := strings.Fields(NormalizeSearchText(keyword))
	if len(tokens) == 0 {
		return false
	}
	t := NormalizeSearchText(title)
	for _, tok := range tokens {
		if strings.Contains(t, tok) {
			return true
		}
	}
	return false
}
