package main

import (
	"bytes"
	"strconv"
)

// CRLF \r\n 是两个字符组成的序列：
// \r：carriage return，中文通常叫 回车
// \n：line feed，中文通常叫 换行
const CRLF = "\r\n" // 回车换行

const httpVersion = "HTTP/1.1"

// Status 响应状态，只支持固定的几种
type Status int

const (
	StatusOK                  Status = 200
	StatusCreated             Status = 201
	StatusBadRequest          Status = 400
	StatusNotFound            Status = 404
	StatusURITooLong          Status = 414
	StatusInternalServerError Status = 500
	StatusNotImplemented      Status = 501
)

var statusText = map[Status]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusURITooLong:          "URI Too Long",
	StatusInternalServerError: "Internal Server Error",
	StatusNotImplemented:      "Not Implemented",
}

// Code 返回数字状态码
func (s Status) Code() int { return int(s) }

func (s Status) String() string {
	text, ok := statusText[s]
	if !ok {
		return strconv.Itoa(int(s))
	}
	return strconv.Itoa(int(s)) + " " + text
}

// Line 返回完整状态行，不含 CRLF，例如 "HTTP/1.1 200 OK"
func (s Status) Line() string {
	return httpVersion + " " + s.String()
}

// Header 一个响应头，保持写入顺序
type Header struct {
	Name  string
	Value string
}

// Response 表示一个待发送的响应
//
// ContentType 为空且 Body 为空时，只输出状态行和空行；
// 否则依次输出 Content-Type、附加头部、Content-Length。
type Response struct {
	Status      Status
	ContentType string
	Headers     []Header // 附加头部，例如 Content-Encoding
	Body        []byte
}

// Bytes 拼出完整的响应报文
func (r *Response) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(r.Status.Line())
	buf.WriteString(CRLF)

	if r.ContentType != "" || len(r.Body) > 0 {
		contentType := r.ContentType
		if contentType == "" {
			contentType = defaultContentType
		}
		writeHeader(&buf, "Content-Type", contentType)
		for _, h := range r.Headers {
			writeHeader(&buf, h.Name, h.Value)
		}
		// Content-Length 按字节计算
		writeHeader(&buf, "Content-Length", strconv.Itoa(len(r.Body)))
	}

	buf.WriteString(CRLF)
	buf.Write(r.Body)
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString(CRLF)
}
