package models

type UserStatus string

const (
	UserStatusManager  UserStatus = "manager"
	UserStatusEmployee UserStatus = "employee"
)

type User struct {
	Syncable

	UserName string     `gorm:"type:varchar(255);not null" json:"user_name"`
	Email    string     `gorm:"type:varchar(255);not null" json:"email"`
	Phone    string     `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Telegram string     `gorm:"type:varchar(40)" json:"telegram,omitempty"`
	Status   UserStatus `gorm:"type:varchar(20);not null;default:employee" json:"status"`

	// CompanyID references a primary key of the store the row lives in.
	// It is remapped through the external id on every push and pull.
	CompanyID *uint `gorm:"index" json:"company_id,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (User) Kind() string {
	return KindUser
}
