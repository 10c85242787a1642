package models

// MetaCollection stores installation-wide singleton documents.
const MetaCollection = "meta"

// FormOptionsDocumentID keys the singleton option-list document in MetaCollection.
const FormOptionsDocumentID = "form_options"

// FormOptions is the admin-editable list of selectable colleges and courses.
// Order is display order.
type FormOptions struct {
	ID       string   `bson:"_id,omitempty" json:"-"`
	Colleges []string `bson:"colleges" json:"colleges"`
	Courses  []string `bson:"courses" json:"courses"`
}

// OptionType names one of the two option lists.
type OptionType string

const (
	OptionTypeCollege OptionType = "college"
	OptionTypeCourse  OptionType = "course"
)

func (t OptionType) IsValid() bool {
	return t == OptionTypeCollege || t == OptionTypeCourse
}

var DefaultColleges = []string{
	"Dr. B. B. Hegde First Grade College, Kundapura",
	"Govinda Dasa College, Surathkal",
	"Sri Bhuvanendra College, Karkala",
	"MGM College, Udupi",
	"Bhandarkars' Arts & Science College, Kundapura",
}

var DefaultCourses = []string{
	"BCA",
	"B.Com",
	"B.Sc",
	"B.A",
	"MBA",
	"MCA",
}

// DefaultFormOptions returns fresh copies of the built-in lists.
func DefaultFormOptions() FormOptions {
	return FormOptions{
		Colleges: append([]string(nil), DefaultColleges...),
		Courses:  append([]string(nil), DefaultCourses...),
	}
}

// List returns the list for t.
func (o FormOptions) List(t OptionType) []string {
	if t == OptionTypeCollege {
		return o.Colleges
	}
	return o.Courses
}

// WithList returns a copy of o with the list for t replaced.
func (o FormOptions) WithList(t OptionType, values []string) FormOptions {
	if t == OptionTypeCollege {
		o.Colleges = values
	} else {
		o.Courses = values
	}
	return o
}
