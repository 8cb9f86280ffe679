package schema

import (
	"encoding/binary"
	"encoding/json"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// SearchColProps 搜索表单栅格
var SearchColProps = ColProps{"xs": 24, "sm": 12, "md": 8, "lg": 6}

// Columns 同一份字段描述派生出的五组列
type Columns struct {
	Search []Column `json:"search"`
	Create []Column `json:"create"`
	Edit   []Column `json:"edit"`
	Table  []Column `json:"table"`
	Detail []Column `json:"detail"`
}

// DefaultActionColumn 缺省的操作列
func DefaultActionColumn() Column {
	return Column{Name: ActionColumn, Title: "操作", Width: 180}
}

// Derive 派生五组列，不修改输入
func Derive(cols []Column) Columns {
	out := Columns{
		Search: make([]Column, 0, len(cols)),
		Create: make([]Column, 0, len(cols)),
		Edit:   make([]Column, 0, len(cols)),
		Table:  make([]Column, 0, len(cols)+1),
		Detail: make([]Column, 0, len(cols)),
	}

	var action *Column
	for _, col := range cols {
		if col.Name == ActionColumn {
			if !col.HiddenInTable && action == nil {
				c := col.Clone()
				action = &c
			}
			continue
		}

		if !col.HiddenInSearch {
			c := col.Clone()
			c.Rules = nil
			props := make(ColProps, len(SearchColProps)+len(c.ColProps))
			for k, v := range SearchColProps {
				props[k] = v
			}
			for k, v := range c.ColProps {
				props[k] = v
			}
			c.ColProps = props
			out.Search = append(out.Search, c)
		}
		if !col.HiddenInCreate {
			out.Create = append(out.Create, col.Clone())
		}
		if !col.HiddenInEdit {
			out.Edit = append(out.Edit, col.Clone())
		}
		if !col.HiddenInTable {
			out.Table = append(out.Table, col.Clone())
		}
		if !col.HiddenInDetail {
			c := col.Clone()
			c.Readonly = true
			out.Detail = append(out.Detail, c)
		}
	}

	if action == nil {
		c := DefaultActionColumn()
		action = &c
	}
	out.Table = append(out.Table, *action)
	return out
}

// Fingerprint 字段描述的指纹，自定义控件按函数入口地址计入
func Fingerprint(cols []Column) (uint64, error) {
	data, err := json.Marshal(cols)
	if err != nil {
		return 0, err
	}
	h := xxhash.New()
	_, _ = h.Write(data)
	var buf [8]byte
	for _, col := range cols {
		var pc uintptr
		if col.RenderFormItem != nil {
			pc = reflect.ValueOf(col.RenderFormItem).Pointer()
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(pc))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64(), nil
}

// Memo 缓存最近一次派生结果，指纹不变时直接返回
// 返回的切片在调用方之间共享，不应修改
//
// 同一函数字面量生成的闭包入口地址相同，只换捕获变量时指纹不变，
// 这种情况需要调用 Reset
type Memo struct {
	mu      sync.Mutex
	valid   bool
	sum     uint64
	derived Columns
	runs    int
}

// Derive 指纹变化时重新派生
func (m *Memo) Derive(cols []Column) Columns {
	sum, err := Fingerprint(cols)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil && m.valid && m.sum == sum {
		return m.derived
	}
	m.derived = Derive(cols)
	m.runs++
	m.sum, m.valid = sum, err == nil
	return m.derived
}

// Reset 丢弃缓存，下次 Derive 必定重新派生
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = false
	m.derived = Columns{}
}

// Runs 实际派生次数
func (m *Memo) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}
