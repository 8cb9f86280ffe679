// Package web 管理后台前端静态文件
package web

import (
	"embed"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/config"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
)

//go:embed dist
var embeddedFS embed.FS

const (
	indexFile       = "index.html"
	defaultDiskPath = "./web/dist"
)

// 不由前端处理的路径前缀
var apiPrefixes = []string{"/api/", "/health"}

// Static 前端静态文件服务，未知路径回落到 index.html
type Static struct {
	fs http.FileSystem
}

// New 按配置选择嵌入文件或磁盘目录，磁盘模式修改后无需重启
func New(cfg config.StaticConfig) (*Static, error) {
	if cfg.Mode == "disk" {
		dir := cfg.DiskPath
		if dir == "" {
			dir = defaultDiskPath
		}
		return &Static{fs: http.Dir(dir)}, nil
	}

	sub, err := fs.Sub(embeddedFS, "dist")
	if err != nil {
		return nil, err
	}
	return &Static{fs: http.FS(sub)}, nil
}

// Register 注册到路由未匹配处理
func (s *Static) Register(r *gin.Engine) {
	r.NoRoute(s.Handle)
}

// IsAPIPath 是否为接口路径
func IsAPIPath(p string) bool {
	for _, prefix := range apiPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Handle 静态文件或 SPA 首页
func (s *Static) Handle(c *gin.Context) {
	p := c.Request.URL.Path
	if IsAPIPath(p) {
		response.ErrorWithMsg(c, http.StatusNotFound, "接口不存在")
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		response.ErrorWithMsg(c, http.StatusMethodNotAllowed, "方法不允许")
		return
	}

	name := path.Clean("/" + p)
	if name != "/" && name != "/"+indexFile && s.isFile(name) {
		c.FileFromFS(name, s.fs)
		return
	}
	s.serveIndex(c)
}

func (s *Static) isFile(name string) bool {
	f, err := s.fs.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	stat, err := f.Stat()
	return err == nil && !stat.IsDir()
}

// serveIndex 直接写出首页内容，避免文件服务把 /index.html 重定向到 /
func (s *Static) serveIndex(c *gin.Context) {
	f, err := s.fs.Open("/" + indexFile)
	if err != nil {
		response.ErrorWithMsg(c, http.StatusNotFound, "前端页面未构建")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}
