package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/export"
	"github.com/pu-ac-cn/rbac-admin/internal/schema"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
)

// sendExport 按实体表格列把记录写成 xlsx 附件
func sendExport[T any](c *gin.Context, catalog *schema.Catalog, entity string, items []T) {
	e, ok := catalog.Lookup(entity)
	if !ok {
		response.ErrorWithMsg(c, http.StatusNotFound, "实体 "+entity+" 不存在")
		return
	}

	rows, err := export.Rows(items)
	if err != nil {
		fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, e.Title, e.Derived().Table, rows); err != nil {
		fail(c, err)
		return
	}

	filename := export.Filename(entity, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
