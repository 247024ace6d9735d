package models

type Company struct {
	Syncable

	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:varchar(1000)" json:"description"`
}

func (Company) TableName() string {
	return "companies"
}

func (Company) Kind() string {
	return KindCompany
}
