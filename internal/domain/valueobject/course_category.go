package valueobject

import "fmt"

// CourseCategory is the closed set of course subjects the classifier was trained on.
type CourseCategory struct {
	value string
}

var (
	CourseCategoryProgramming = CourseCategory{value: "Programming"}
	CourseCategoryBusiness    = CourseCategory{value: "Business"}
	CourseCategoryDesign      = CourseCategory{value: "Design"}
	CourseCategoryMarketing   = CourseCategory{value: "Marketing"}
	CourseCategoryDataScience = CourseCategory{value: "Data Science"}
	CourseCategoryOther       = CourseCategory{value: "Other"}
)

var courseCategories = []CourseCategory{
	CourseCategoryProgramming,
	CourseCategoryBusiness,
	CourseCategoryDesign,
	CourseCategoryMarketing,
	CourseCategoryDataScience,
	CourseCategoryOther,
}

// CourseCategories returns every accepted category in declaration order.
func CourseCategories() []CourseCategory {
	out := make([]CourseCategory, len(courseCategories))
	copy(out, courseCategories)
	return out
}

// CourseCategoryFromString matches s case-sensitively against the accepted categories.
func CourseCategoryFromString(s string) (CourseCategory, error) {
	for _, c := range courseCategories {
		if c.value == s {
			return c, nil
		}
	}
	return CourseCategory{}, fmt.Errorf("invalid course category: %q", s)
}

// String returns the string representation.
func (c CourseCategory) String() string {
	return c.value
}

// IsZero returns true if the category has not been set.
func (c CourseCategory) IsZero() bool {
	return c.value == ""
}

// Equal checks equality with another CourseCategory.
func (c CourseCategory) Equal(other CourseCategory) bool {
	return c.value == other.value
}
