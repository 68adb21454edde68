package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chat struct {
	BaseEntity
	Participants []ChatParticipant `json:"participants" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE;"`
	Messages     []Messages        `json:"messages,omitempty" gorm:"foreignKey:ChatId;constraint:OnDelete:CASCADE;"`
}

type ChatParticipant struct {
	ID     string `gorm:"primaryKey;type:varchar(255)"`
	ChatID string `gorm:"type:varchar(255);not null;uniqueIndex:idx_chat_user"`
	UserID string `gorm:"type:varchar(255);not null;uniqueIndex:idx_chat_user"`

	Chat Chat `gorm:"foreignKey:ChatID;references:ID;constraint:OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
}

func (p *ChatParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
