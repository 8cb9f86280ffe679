package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/schema"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
)

// SchemaHandler 字段描述处理器，前端据此渲染搜索、表单、表格和详情
type SchemaHandler struct {
	catalog    *schema.Catalog
	dispatcher *schema.Dispatcher
}

// NewSchemaHandler 创建字段描述处理器
func NewSchemaHandler(catalog *schema.Catalog, dispatcher *schema.Dispatcher) *SchemaHandler {
	return &SchemaHandler{catalog: catalog, dispatcher: dispatcher}
}

// EntitySchema 实体的派生列和各表单控件
type EntitySchema struct {
	Entity  string                     `json:"entity"`
	Title   string                     `json:"title"`
	Columns schema.Columns             `json:"columns"`
	Widgets map[string][]schema.Widget `json:"widgets"`
}

// List 已注册实体
// GET /api/schema
func (h *SchemaHandler) List(c *gin.Context) {
	response.Success(c, h.catalog.Names())
}

// Get 实体字段描述
// GET /api/schema/:entity
func (h *SchemaHandler) Get(c *gin.Context) {
	name := c.Param("entity")
	e, ok := h.catalog.Lookup(name)
	if !ok {
		response.ErrorWithMsg(c, http.StatusNotFound, "实体 "+name+" 不存在")
		return
	}

	cols := e.Derived()
	response.Success(c, &EntitySchema{
		Entity:  e.Name,
		Title:   e.Title,
		Columns: cols,
		Widgets: map[string][]schema.Widget{
			"search": h.dispatcher.ResolveAll(cols.Search, false),
			"create": h.dispatcher.ResolveAll(cols.Create, false),
			"edit":   h.dispatcher.ResolveAll(cols.Edit, false),
			"detail": h.dispatcher.ResolveAll(cols.Detail, true),
		},
	})
}
