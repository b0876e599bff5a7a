package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Permission{},
		&Role{},
		&User{},
		&Category{},
		&Post{},
		&CategoryPost{},
		&Comment{},
		&Notification{},
	}
}
