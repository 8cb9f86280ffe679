// Package schema 声明式字段描述，驱动表单控件、只读展示和表格列
package schema

// FieldType 字段类型
type FieldType string

// 字段类型
const (
	TypeInput      FieldType = "input"
	TypePassword   FieldType = "password"
	TypeTextarea   FieldType = "textarea"
	TypeNumber     FieldType = "number"
	TypeSelect     FieldType = "select"
	TypeDate       FieldType = "date"
	TypeTime       FieldType = "time"
	TypeDatetime   FieldType = "datetime"
	TypeSwitch     FieldType = "switch"
	TypeCheckbox   FieldType = "checkbox"
	TypeRadio      FieldType = "radio"
	TypeUpload     FieldType = "upload"
	TypeImage      FieldType = "image"
	TypeCascader   FieldType = "cascader"
	TypeTreeSelect FieldType = "treeSelect"
	TypeMarkdown   FieldType = "markdown"
)

// FieldTypes 全部字段类型
var FieldTypes = []FieldType{
	TypeInput, TypePassword, TypeTextarea, TypeNumber, TypeSelect, TypeDate, TypeTime, TypeDatetime,
	TypeSwitch, TypeCheckbox, TypeRadio, TypeUpload, TypeImage, TypeCascader, TypeTreeSelect, TypeMarkdown,
}

// Valid 是否为已知类型
func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// ActionColumn 操作列名称
const ActionColumn = "action"

// Option 选项，级联和树选择使用 Children
type Option struct {
	Label    string   `json:"label"`
	Value    any      `json:"value"`
	Children []Option `json:"children,omitempty"`
}

// Rule 表单校验规则
type Rule struct {
	Required bool   `json:"required,omitempty"`
	Message  string `json:"message,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Min      *int   `json:"min,omitempty"`
	Max      *int   `json:"max,omitempty"`
}

// ColProps 栅格配置，如 {"xs":24,"md":8}
type ColProps map[string]int

// Column 字段描述
type Column struct {
	Name       string         `json:"name"`
	Title      string         `json:"title"`
	Type       FieldType      `json:"type,omitempty"`
	FieldProps map[string]any `json:"fieldProps,omitempty"`
	Options    []Option       `json:"options,omitempty"`
	Rules      []Rule         `json:"rules,omitempty"`
	Readonly   bool           `json:"readonly,omitempty"`
	Width      int            `json:"width,omitempty"`
	ColProps   ColProps       `json:"colProps,omitempty"`

	HiddenInSearch bool `json:"hiddenInSearch,omitempty"`
	HiddenInCreate bool `json:"hiddenInCreate,omitempty"`
	HiddenInEdit   bool `json:"hiddenInEdit,omitempty"`
	HiddenInTable  bool `json:"hiddenInTable,omitempty"`
	HiddenInDetail bool `json:"hiddenInDetail,omitempty"`

	// RenderFormItem 自定义控件，优先于 Type
	RenderFormItem func(Column) Widget `json:"-"`
}

// Clone 深拷贝，派生结果不与输入共享可变字段
func (c Column) Clone() Column {
	out := c
	if c.FieldProps != nil {
		out.FieldProps = make(map[string]any, len(c.FieldProps))
		for k, v := range c.FieldProps {
			out.FieldProps[k] = v
		}
	}
	if c.Options != nil {
		out.Options = cloneOptions(c.Options)
	}
	if c.Rules != nil {
		out.Rules = append([]Rule(nil), c.Rules...)
	}
	if c.ColProps != nil {
		out.ColProps = make(ColProps, len(c.ColProps))
		for k, v := range c.ColProps {
			out.ColProps[k] = v
		}
	}
	return out
}

func cloneOptions(opts []Option) []Option {
	out := make([]Option, len(opts))
	for i, o := range opts {
		out[i] = o
		if o.Children != nil {
			out[i].Children = cloneOptions(o.Children)
		}
	}
	return out
}
