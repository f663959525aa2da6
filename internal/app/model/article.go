package model

import (
	"time"
)

type Article struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug"`
	Content    string    `gorm:"type:text" json:"content"`
	Excerpt    string    `gorm:"type:text" json:"excerpt"`
	Category   string    `gorm:"type:varchar(50);index" json:"category"`
	Published  bool      `gorm:"default:false;index" json:"published"`
	CoverImage *string   `json:"cover_image"`
	VideoURL   *string   `gorm:"column:video_url" json:"video_url"`
	PDFURL     *string   `gorm:"column:pdf_url" json:"pdf_url"`
	AuthorID   uint      `gorm:"index" json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Article) TableName() string {
	return "articles"
}
