package model

// All lists every table owned by the engine, in migration order.
func All() []any {
	return []any{
		&Branch{},
		&TechnicianProfile{},
		&Level{},
		&LedgerEntry{},
		&PromotionRecord{},
		&Skill{},
		&Notification{},
		&CacheEntry{},
	}
}
