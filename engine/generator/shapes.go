package generator

// Shape structs exist only to be reflected into JSON schemas; documents are
// never decoded into them.

type SubmitButton struct {
	Text        string `json:"text"                  jsonschema:"required"`
	Tooltip     string `json:"tooltip,omitempty"`
	Instruction string `json:"instruction,omitempty"`
}

type FieldOption struct {
	Label   string `json:"label"             jsonschema:"required"`
	Value   any    `json:"value"             jsonschema:"required"`
	Checked bool   `json:"checked,omitempty"`
}

type Field struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"                  jsonschema:"required,minLength=1"`
	Label       string         `json:"label"                 jsonschema:"required"`
	Type        string         `json:"type"                  jsonschema:"required,enum=checkbox,enum=email,enum=file,enum=hidden,enum=input,enum=number,enum=password,enum=radio,enum=select,enum=textarea"` //nolint:lll
	Help        string         `json:"help,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Tooltip     string         `json:"tooltip,omitempty"`
	Value       any            `json:"value,omitempty"`
	Options     []FieldOption  `json:"options,omitempty"`
	Multiple    bool           `json:"multiple,omitempty"`
	Validators  map[string]any `json:"validators,omitempty"`
	Triggers    map[string]any `json:"triggers,omitempty"`
}

type Row struct {
	Help   string  `json:"help,omitempty"`
	Fields []Field `json:"fields"         jsonschema:"required,minItems=1"`
}

type Fieldset struct {
	Title       string `json:"title,omitempty"`
	Instruction string `json:"instruction,omitempty"`
	Help        string `json:"help,omitempty"`
	Rows        []Row  `json:"rows"                  jsonschema:"required,minItems=1"`
}

type Section struct {
	Name               string     `json:"name,omitempty"`
	Title              string     `json:"title,omitempty"`
	Instruction        string     `json:"instruction,omitempty"`
	Collapsable        bool       `json:"collapsable,omitempty"`
	InitiallyCollapsed bool       `json:"initially_collapsed,omitempty"`
	Fieldsets          []Fieldset `json:"fieldsets"                     jsonschema:"required,minItems=1"`
}

type Form struct {
	Title        string       `json:"title"                 jsonschema:"required"`
	Instruction  string       `json:"instruction,omitempty"`
	Sections     []Section    `json:"sections"              jsonschema:"required,minItems=1"`
	SubmitButton SubmitButton `json:"submit_button"         jsonschema:"required"`
}

// FormComposerShape is the top level of a form composer unit config
type FormComposerShape struct {
	Form Form `json:"form" jsonschema:"required"`
}

type SegmentField struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"                  jsonschema:"required,minLength=1"`
	Label       string         `json:"label"                 jsonschema:"required"`
	Type        string         `json:"type"                  jsonschema:"required,enum=checkbox,enum=input,enum=radio,enum=select,enum=textarea"` //nolint:lll
	Help        string         `json:"help,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Tooltip     string         `json:"tooltip,omitempty"`
	Value       any            `json:"value,omitempty"`
	Options     []FieldOption  `json:"options,omitempty"`
	Multiple    bool           `json:"multiple,omitempty"`
	Validators  map[string]any `json:"validators,omitempty"`
}

type Annotator struct {
	Title         string         `json:"title"                    jsonschema:"required"`
	Instruction   string         `json:"instruction,omitempty"`
	Video         string         `json:"video"                    jsonschema:"required,minLength=1"`
	SegmentFields []SegmentField `json:"segment_fields,omitempty"`
	SubmitButton  SubmitButton   `json:"submit_button"            jsonschema:"required"`
}

// VideoAnnotatorShape is the top level of a video annotator unit config
type VideoAnnotatorShape struct {
	Annotator Annotator `json:"annotator" jsonschema:"required"`
}

// ItemsShape is the generic flat list of items
type ItemsShape struct {
	Items []map[string]any `json:"items" jsonschema:"required"`
}
