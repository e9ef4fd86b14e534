package model

import "strings"

// Category — одна из фиксированного набора категорий расходов
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryGrocery       Category = "Grocery"
	CategoryTravel        Category = "Travel"
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategoryHealthcare    Category = "Healthcare"
	CategoryEducation     Category = "Education"
	CategoryOther         Category = "Other"
)

var categories = []Category{
	CategoryFood,
	CategoryGrocery,
	CategoryTravel,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryEducation,
	CategoryOther,
}

// Categories возвращает все допустимые категории в порядке, в котором они перечисляются модели
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory ищет категорию без учёта регистра и пробелов по краям
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
