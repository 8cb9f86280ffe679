// Package export 按字段描述导出 Excel
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pu-ac-cn/rbac-admin/internal/schema"
)

// MaxRows 单次导出上限
const MaxRows = 10000

// ContentType xlsx 响应类型
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename 导出文件名，如 user_20240305150405.xlsx
func Filename(entity string, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", entity, now.Format("20060102150405"))
}

// Rows 把任意记录转成按 JSON 字段名索引的行
func Rows[T any](items []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		row := make(map[string]any)
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Write 写出单个工作表，列为表格可见列去掉操作列，单元格按字段类型格式化
func Write(w io.Writer, sheet string, cols []schema.Column, rows []map[string]any) error {
	if len(rows) > MaxRows {
		return fmt.Errorf("导出记录数 %d 超过上限 %d", len(rows), MaxRows)
	}

	visible := make([]schema.Column, 0, len(cols))
	for _, col := range cols {
		if col.Name == schema.ActionColumn || col.HiddenInTable {
			continue
		}
		visible = append(visible, col)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("重命名工作表失败: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("创建表头样式失败: %w", err)
	}

	for i, col := range visible {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col.Title); err != nil {
			return fmt.Errorf("设置表头单元格 %s 失败: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("设置表头样式失败: %w", err)
		}

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := 15.0
		if col.Width > 0 {
			width = float64(col.Width) / 7
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for i, col := range visible {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, schema.Format(col, row[col.Name]).Text); err != nil {
				return fmt.Errorf("设置单元格 %s 失败: %w", cell, err)
			}
		}
	}

	if len(visible) > 0 {
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}
