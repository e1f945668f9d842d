package models

// GetAllModels returns all model types for migration
func GetAllModels() []interface{} {
	return []interface{}{
		// User models
		&User{},
		&UserPreference{},

		// Topic models
		&Topic{},

		// Tag models
		&Tag{},
		&TagAlias{},
		&TagGroup{},
		&TagGroupMembership{},
		&TopicTag{},
	}
}
