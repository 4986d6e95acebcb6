package models

type Category struct {
	CategoryID int    `json:"category_id"`
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
}
