package main

import "strings"

// RouteKind 路由决策结果
type RouteKind int

const (
	RouteUnsupported       RouteKind = iota // 501
	RouteNotFound                           // GET 但没有匹配，404
	RoutePing                               // GET /
	RouteEcho                               // GET /echo/<text>
	RouteUserAgent                          // GET /user-agent
	RouteConfiguredDirFile                  // GET /files/<name>
	RouteRelativeFile                       // GET /<相对路径>
	RouteStoreFile                          // POST /files/<name>
)

var routeNames = [...]string{
	RouteUnsupported:       "unsupported",
	RouteNotFound:          "not-found",
	RoutePing:              "ping",
	RouteEcho:              "echo",
	RouteUserAgent:         "user-agent",
	RouteConfiguredDirFile: "files",
	RouteRelativeFile:      "relative-file",
	RouteStoreFile:         "store-file",
}

func (k RouteKind) String() string {
	if k < 0 || int(k) >= len(routeNames) {
		return "unknown"
	}
	return routeNames[k]
}

// Route 根据 method 和 path 前缀选择路由，按顺序匹配，先命中者生效。
// 纯函数，不访问文件系统；相对路径文件是否存在由 FileStore 判断。
func Route(method, path string) RouteKind {
	switch method {
	case "GET":
		switch {
		case path == "":
			return RoutePing
		case strings.HasPrefix(path, "echo/"):
			return RouteEcho
		case strings.HasPrefix(path, "user-agent"):
			return RouteUserAgent
		case strings.HasPrefix(path, "files/"):
			return RouteConfiguredDirFile
		case isRelativeFilePath(path):
			return RouteRelativeFile
		default:
			return RouteNotFound
		}
	case "POST":
		if strings.HasPrefix(path, "files/") {
			return RouteStoreFile
		}
	}
	return RouteUnsupported
}

// isRelativeFilePath 路径里至少要有一个 "/"，
// 这样客户端拿不到和可执行文件同一层的文件
func isRelativeFilePath(path string) bool {
	return strings.Contains(path, "/") && !hasDotDot(path)
}

// HandlerFunc 路由处理函数类型
type HandlerFunc func(req *Request) *Response

// Mux 非 net/http 版本的极简路由器
type Mux struct {
	routes map[RouteKind]HandlerFunc
}

// NewMux 创建一个新的路由器
func NewMux() *Mux {
	return &Mux{
		routes: make(map[RouteKind]HandlerFunc),
	}
}

// Handle 注册路由
func (m *Mux) Handle(kind RouteKind, handler HandlerFunc) {
	m.routes[kind] = handler
}

// Serve 根据 Route 的决策分发到对应的 Handler
// 如果没有注册对应的 Handler，GET 返回 404，其余返回 501
func (m *Mux) Serve(req *Request) *Response {
	kind := Route(req.Method, req.Path)
	if h, ok := m.routes[kind]; ok {
		return h(req)
	}
	if kind == RouteUnsupported {
		return errorResponse(ErrUnsupportedRoute)
	}
	return errorResponse(ErrPathInvalid)
}
