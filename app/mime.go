package main

import "strings"

const defaultContentType = "application/octet-stream"

// 扩展名 -> MIME，参考 MDN 的常见类型列表
var contentTypes = map[string]string{
	"bmp":  "image/bmp",
	"css":  "text/css",
	"csv":  "text/csv",
	"gif":  "image/gif",
	"htm":  "text/html",
	"html": "text/html",
	"ico":  "image/vnd.microsoft.icon",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"js":   "text/javascript",
	"json": "application/json",
	"png":  "image/png",
	"pdf":  "application/pdf",
	"php":  "application/x-httpd-php",
	"svg":  "image/svg+xml",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"txt":  "text/plain",
}

// extension 取最后一个路径片段里最后一个 "." 之后的部分（小写）。
// 先截出文件名再找 "."，否则 "a.d/file" 这种没有扩展名的文件会被误判。
func extension(path string) string {
	name := path[strings.LastIndex(path, "/")+1:]
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return ""
	}
	return strings.ToLower(name[dot+1:])
}

// ContentTypeFor 根据扩展名返回 MIME，未知类型返回 application/octet-stream
func ContentTypeFor(path string) string {
	if ct, ok := contentTypes[extension(path)]; ok {
		return ct
	}
	return defaultContentType
}
