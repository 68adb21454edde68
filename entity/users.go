package entity

type User struct {
	BaseEntity
	Username string `json:"username" gorm:"unique;type:varchar(50)"`
	Password string `json:"-" gorm:"type:varchar(255)"`

	Messages      []Messages        `json:"-" gorm:"foreignKey:SenderId"`
	Participating []ChatParticipant `json:"-" gorm:"foreignKey:UserID"`
}
