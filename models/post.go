package models

import (
	"time"

	"github.com/google/uuid"
)

// Like records that a user liked a post. A user may appear at most once in
// a post's likes list.
type Like struct {
	UserID uint `json:"user_id"`
}

// Comment is a reply on a post, owned by its own author independently of
// the post's author. Author name and avatar are snapshotted at creation.
type Comment struct {
	ID           string    `json:"id"`
	AuthorID     uint      `json:"user_id"`
	Text         string    `json:"text"`
	AuthorName   string    `json:"name"`
	AuthorAvatar string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post is a user's post together with its embedded likes and comments.
// The lists are JSON columns mutated by read-modify-write of the row.
// Author name and avatar are denormalized at creation time.
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AuthorID     uint      `gorm:"index;not null" json:"user_id"`
	Text         string    `gorm:"not null" json:"text"`
	AuthorName   string    `json:"name"`
	AuthorAvatar string    `json:"avatar"`
	Likes        []Like    `gorm:"serializer:json" json:"likes"`
	Comments     []Comment `gorm:"serializer:json" json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AddLike prepends a like for userID. The list stands in for a unique
// index, so the duplicate scan happens here before appending.
func (p *Post) AddLike(userID uint) error {
	for _, like := range p.Likes {
		if like.UserID == userID {
			return NewConflictError("Post already liked")
		}
	}
	p.Likes = append([]Like{{UserID: userID}}, p.Likes...)
	return nil
}

// RemoveLike removes the like belonging to userID. Unliking a post the
// user never liked fails.
func (p *Post) RemoveLike(userID uint) error {
	for i, like := range p.Likes {
		if like.UserID == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return nil
		}
	}
	return NewNotFoundError("Post has not yet been liked")
}

// AddComment assigns a fresh ID and timestamp and prepends the comment.
func (p *Post) AddComment(comment Comment) Comment {
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()
	p.Comments = append([]Comment{comment}, p.Comments...)
	return comment
}

// RemoveComment removes one comment by ID on behalf of actorID. Existence
// is checked before ownership, so a missing comment reports not-found even
// when the caller would also fail the ownership check.
func (p *Post) RemoveComment(commentID string, actorID uint) error {
	for i, comment := range p.Comments {
		if comment.ID == commentID {
			if comment.AuthorID != actorID {
				return NewForbiddenError("User not authorized")
			}
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return NewNotFoundError("Comment does not exist")
}
