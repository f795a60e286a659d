package models

import (
	"time"
)

const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

type Review struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProductID  uint      `json:"product_id" gorm:"not null;index"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Rating     int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	ReviewText string    `json:"review_text"`
	IsVisible  bool      `json:"is_visible" gorm:"default:false"` // visible after approval
	ViewsCount uint      `json:"views_count" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	User         User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product      Product       `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Comments     []ReviewComment `json:"comments,omitempty" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
	Interactions []Interaction   `json:"interactions,omitempty" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
	Reports      []Report        `json:"reports,omitempty" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
}

type ReviewComment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ReviewID    uint      `json:"review_id" gorm:"not null;index"`
	UserID      uint      `json:"user_id" gorm:"not null"`
	CommentText string    `json:"comment_text" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Interaction is a write-once like/dislike. The composite unique index is the
// authority on the one-reaction-per-user-per-review invariant; existence
// pre-checks in the service layer only improve error messages.
type Interaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ReviewID  uint      `json:"review_id" gorm:"not null;uniqueIndex:idx_interaction_review_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_interaction_review_user"`
	Reaction  string    `json:"reaction" gorm:"not null;check:reaction IN ('like','dislike')"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Report is write-once per (review, user), same enforcement as Interaction.
type Report struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ReviewID  uint      `json:"review_id" gorm:"not null;uniqueIndex:idx_report_review_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_report_review_user"`
	Reason    string    `json:"reason" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
