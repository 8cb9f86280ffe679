package schema

import "strings"

// 只读控件
const (
	WidgetText            = "Text"
	WidgetImages          = "ImageCarousel"
	WidgetMarkdownPreview = "MarkdownPreview"
)

// Widget 控件描述，由前端按 Kind 渲染
type Widget struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Label       string         `json:"label"`
	Placeholder string         `json:"placeholder,omitempty"`
	Props       map[string]any `json:"props,omitempty"`
	Options     []Option       `json:"options,omitempty"`
	Rules       []Rule         `json:"rules,omitempty"`
	ColProps    ColProps       `json:"colProps,omitempty"`
	Readonly    bool           `json:"readonly,omitempty"`
}

// Builder 根据字段生成控件
type Builder func(col Column) Widget

// Dispatcher 字段类型到控件的注册表，未注册类型回落到输入框
type Dispatcher struct {
	builders map[FieldType]Builder
	readonly map[FieldType]Builder
	fallback Builder
}

// NewDispatcher 创建注册了全部内置类型的分发器
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		builders: make(map[FieldType]Builder),
		readonly: make(map[FieldType]Builder),
	}

	kinds := map[FieldType]string{
		TypeInput:      "Input",
		TypePassword:   "Password",
		TypeTextarea:   "TextArea",
		TypeNumber:     "InputNumber",
		TypeSelect:     "Select",
		TypeDate:       "DatePicker",
		TypeTime:       "TimePicker",
		TypeDatetime:   "DatePicker",
		TypeSwitch:     "Switch",
		TypeCheckbox:   "CheckboxGroup",
		TypeRadio:      "RadioGroup",
		TypeUpload:     "Upload",
		TypeImage:      "ImageUpload",
		TypeCascader:   "Cascader",
		TypeTreeSelect: "TreeSelect",
		TypeMarkdown:   "MarkdownEditor",
	}
	for t, kind := range kinds {
		d.Register(t, widgetBuilder(kind, placeholderPrefix(t), defaultProps(t)))
	}
	d.fallback = d.builders[TypeInput]

	d.readonly[TypeImage] = readonlyBuilder(WidgetImages)
	d.readonly[TypeUpload] = readonlyBuilder(WidgetImages)
	d.readonly[TypeMarkdown] = readonlyBuilder(WidgetMarkdownPreview)
	return d
}

// Register 注册或覆盖类型的控件构造器
func (d *Dispatcher) Register(t FieldType, b Builder) {
	d.builders[t] = b
}

// Resolve 生成字段控件，readonly 为表单整体只读标记
func (d *Dispatcher) Resolve(col Column, readonly bool) Widget {
	if readonly || col.Readonly {
		if b, ok := d.readonly[col.Type]; ok {
			return b(col)
		}
		return readonlyBuilder(WidgetText)(col)
	}

	if col.RenderFormItem != nil {
		w := col.RenderFormItem(col)
		if w.Name == "" {
			w.Name = col.Name
		}
		if w.Label == "" {
			w.Label = col.Title
		}
		return w
	}

	if b, ok := d.builders[col.Type]; ok {
		return b(col)
	}
	return d.fallback(col)
}

// ResolveAll 依次生成一组字段的控件
func (d *Dispatcher) ResolveAll(cols []Column, readonly bool) []Widget {
	out := make([]Widget, 0, len(cols))
	for _, col := range cols {
		out = append(out, d.Resolve(col, readonly))
	}
	return out
}

func widgetBuilder(kind, prefix string, props map[string]any) Builder {
	return func(col Column) Widget {
		merged := make(map[string]any, len(props)+len(col.FieldProps))
		for k, v := range props {
			merged[k] = v
		}
		for k, v := range col.FieldProps {
			merged[k] = v
		}

		placeholder, _ := merged["placeholder"].(string)
		delete(merged, "placeholder")
		if strings.TrimSpace(placeholder) == "" {
			placeholder = prefix + col.Title
		}
		if len(merged) == 0 {
			merged = nil
		}

		return Widget{
			Kind:        kind,
			Name:        col.Name,
			Label:       col.Title,
			Placeholder: placeholder,
			Props:       merged,
			Options:     col.Options,
			Rules:       col.Rules,
			ColProps:    col.ColProps,
		}
	}
}

func readonlyBuilder(kind string) Builder {
	return func(col Column) Widget {
		return Widget{
			Kind:     kind,
			Name:     col.Name,
			Label:    col.Title,
			Options:  col.Options,
			ColProps: col.ColProps,
			Readonly: true,
		}
	}
}

// placeholderPrefix 占位符前缀
func placeholderPrefix(t FieldType) string {
	switch t {
	case TypeUpload, TypeImage:
		return "请上传"
	case TypeSelect, TypeDate, TypeTime, TypeDatetime, TypeSwitch,
		TypeCheckbox, TypeRadio, TypeCascader, TypeTreeSelect:
		return "请选择"
	}
	return "请输入"
}

func defaultProps(t FieldType) map[string]any {
	switch t {
	case TypeDate:
		return map[string]any{"type": "date", "format": "yyyy-MM-dd"}
	case TypeDatetime:
		return map[string]any{"type": "dateTime", "format": "yyyy-MM-dd HH:mm:ss"}
	case TypeTime:
		return map[string]any{"format": "HH:mm:ss"}
	case TypeImage:
		return map[string]any{"accept": "image/*", "listType": "picture"}
	case TypePassword:
		return map[string]any{"mode": "password"}
	}
	return nil
}
