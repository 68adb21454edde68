package entity

type Messages struct {
	BaseEntity
	// Seq breaks created_at ties when ordering a chat transcript.
	Seq      int64  `json:"-" gorm:"autoIncrement;uniqueIndex"`
	Content  string `json:"content" gorm:"type:TEXT"` // sealed blob at rest
	ChatId   string `json:"chatId" gorm:"foreignKey"`
	SenderId string `json:"senderId" gorm:"foreignKey"`

	Chat   Chat `json:"-" gorm:"foreignKey:ChatId;references:ID"`
	Sender User `json:"-" gorm:"foreignKey:SenderId;references:ID"`
}
