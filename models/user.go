package models

import "time"

type User struct {
	ID        string  `gorm:"primaryKey" json:"id"` // user_<token>
	Email     string  `gorm:"unique;not null" json:"email"`
	Phone     string  `json:"phone"`
	Name      string  `json:"name"`
	Address   Address `gorm:"embedded" json:"address"` // default shipping address
	CreatedAt time.Time
}

// Address model embedded in User and Order
type Address struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
}
