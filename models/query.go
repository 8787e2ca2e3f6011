package models

type SortField struct {
	Column string
	Desc   bool
}

// LessonQuery là điều kiện lọc danh sách bài học
type LessonQuery struct {
	Type       LessonType
	Language   Language
	Level      string
	Sort       []SortField
	ActiveOnly bool
}
