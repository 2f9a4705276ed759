package models

// Gift представляет подарок из каталога
type Gift struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"` // цена в субкоинах
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Purchased   bool   `json:"purchased"` // куплен ли подарок текущим пользователем
}
