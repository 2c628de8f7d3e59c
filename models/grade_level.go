package models

// gradeProgression maps a grade level to the one a student moves up to.
// Final grades and levels outside a school track have no entry.
var gradeProgression = map[string]string{
	"Preschool":    "Kindergarten",
	"Kindergarten": "Primary 1",

	"Primary 1": "Primary 2",
	"Primary 2": "Primary 3",
	"Primary 3": "Primary 4",
	"Primary 4": "Primary 5",
	"Primary 5": "Primary 6",
	"Primary 6": "Secondary 1",

	"Secondary 1": "Secondary 2",
	"Secondary 2": "Secondary 3",
	"Secondary 3": "Secondary 4",
	// O-Level and N(A)-Level students both continue to junior college
	"Secondary 4": "Junior College 1",
	"Secondary 5": "Junior College 1",

	"Junior College 1": "Junior College 2",

	"Grade 1":  "Grade 2",
	"Grade 2":  "Grade 3",
	"Grade 3":  "Grade 4",
	"Grade 4":  "Grade 5",
	"Grade 5":  "Grade 6",
	"Grade 6":  "Grade 7",
	"Grade 7":  "Grade 8",
	"Grade 8":  "Grade 9",
	"Grade 9":  "Grade 10",
	"Grade 10": "Grade 11",
	"Grade 11": "Grade 12",
}

// NextGradeLevel returns the grade after level, if there is one.
func NextGradeLevel(level string) (string, bool) {
	next, ok := gradeProgression[level]
	return next, ok
}
