package model

const (
	DefaultUserName   = "User"
	DefaultUserAvatar = "/default-avatar.png"
)

// ID 與身份提供者的 subject 相同
type User struct {
	ID       string `gorm:"primaryKey;type:varchar(128)" json:"_id"`
	Name     string `gorm:"not null;type:varchar(255)" json:"name"`
	Email    string `gorm:"not null;type:varchar(255)" json:"email"`
	ImageURL string `gorm:"type:text" json:"imageUrl"`
	BaseModel
}

type Address struct {
	ID          string `gorm:"primaryKey;type:varchar(64)" json:"_id"`
	UserID      string `gorm:"not null;type:varchar(128);index" json:"userId"`
	FullName    string `gorm:"not null;type:varchar(255)" json:"fullName"`
	PhoneNumber string `gorm:"not null;type:varchar(32)" json:"phoneNumber"`
	Pincode     string `gorm:"not null;type:varchar(16)" json:"pincode"`
	Area        string `gorm:"not null;type:text" json:"area"`
	City        string `gorm:"not null;type:varchar(100)" json:"city"`
	State       string `gorm:"not null;type:varchar(100)" json:"state"`
	BaseModel
}
