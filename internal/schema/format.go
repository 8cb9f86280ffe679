package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// EmptyText 空值显示
const EmptyText = "-"

// 时间格式
const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02 15:04:05"
	TimeLayout     = "15:04:05"
)

// Display 只读展示结果
type Display struct {
	Kind   string   `json:"kind"`
	Text   string   `json:"text"`
	Images []string `json:"images,omitempty"`
}

func text(s string) Display {
	return Display{Kind: WidgetText, Text: s}
}

// Format 按字段类型格式化值，用于详情页和导出
func Format(col Column, value any) Display {
	value = deref(value)
	if col.Type != TypeSwitch && isEmpty(value) {
		return text(EmptyText)
	}

	switch col.Type {
	case TypeSwitch:
		if truthy(value) {
			return text("是")
		}
		return text("否")
	case TypeDate:
		return formatTime(value, DateLayout)
	case TypeDatetime:
		return formatTime(value, DatetimeLayout)
	case TypeTime:
		return formatTime(value, TimeLayout)
	case TypeSelect, TypeRadio, TypeCheckbox:
		return text(strings.Join(labels(col.Options, value), ", "))
	case TypeCascader, TypeTreeSelect:
		return text(optionPath(col.Options, value))
	case TypeImage, TypeUpload:
		images := stringList(value)
		return Display{Kind: WidgetImages, Text: strings.Join(images, ", "), Images: images}
	case TypeMarkdown:
		return Display{Kind: WidgetMarkdownPreview, Text: fmt.Sprint(value)}
	}
	return text(fmt.Sprint(value))
}

// deref 解开指针，nil 指针视为 nil
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	if t, ok := v.(time.Time); ok {
		return t.IsZero()
	}
	return false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "on", "enabled":
			return true
		}
		return false
	}
	f, ok := toFloat(v)
	return ok && f != 0
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// parseTime 支持 time.Time、常见字符串格式和毫秒时间戳
func parseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range []string{time.RFC3339Nano, DatetimeLayout, DateLayout, TimeLayout} {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return t, true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms), true
		}
		return time.Time{}, false
	}
	if f, ok := toFloat(v); ok {
		return time.UnixMilli(int64(f)), true
	}
	return time.Time{}, false
}

func formatTime(v any, layout string) Display {
	t, ok := parseTime(v)
	if !ok {
		return text(fmt.Sprint(v))
	}
	return text(t.Local().Format(layout))
}

// values 把单值或切片统一成切片
func values(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

func sameValue(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// labels 查找选项标签，找不到时使用原值
func labels(opts []Option, v any) []string {
	vals := values(v)
	out := make([]string, 0, len(vals))
	for _, val := range vals {
		label := fmt.Sprint(val)
		for _, o := range opts {
			if sameValue(o.Value, val) {
				label = o.Label
				break
			}
		}
		out = append(out, label)
	}
	return out
}

// optionPath 级联值显示为标签路径
func optionPath(opts []Option, v any) string {
	vals := values(v)
	if len(vals) == 1 {
		if path, ok := findPath(opts, vals[0]); ok {
			return strings.Join(path, " / ")
		}
		return fmt.Sprint(vals[0])
	}

	parts := make([]string, 0, len(vals))
	level := opts
	for _, val := range vals {
		label := fmt.Sprint(val)
		var next []Option
		for _, o := range level {
			if sameValue(o.Value, val) {
				label = o.Label
				next = o.Children
				break
			}
		}
		parts = append(parts, label)
		level = next
	}
	return strings.Join(parts, " / ")
}

func findPath(opts []Option, v any) ([]string, bool) {
	for _, o := range opts {
		if sameValue(o.Value, v) {
			return []string{o.Label}, true
		}
		if sub, ok := findPath(o.Children, v); ok {
			return append([]string{o.Label}, sub...), true
		}
	}
	return nil, false
}

// stringList 图片值可以是逗号分隔的字符串或字符串数组
func stringList(v any) []string {
	if s, ok := v.(string); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	vals := values(v)
	out := make([]string, 0, len(vals))
	for _, val := range vals {
		if s := strings.TrimSpace(fmt.Sprint(val)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
