package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Request 表示一个简单的 HTTP 请求（不依赖 net/http）
type Request struct {
	Method  string
	Path    string // request-target 去掉开头的 "/"，不处理查询串
	Version string
	Headers []Header // 保持报文中的顺序
	Body    []byte   // 第一个空行之后的全部字节
}

// Header 按名字查找请求头，名字区分大小写，返回第一个匹配
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// ContentLength 返回 Content-Length 头，缺失或非法时 ok 为 false
func (r *Request) ContentLength() (n int, ok bool) {
	v, ok := r.Header("Content-Length")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseRequest 从原始字节中解析出请求行、请求头和 body。
//
// 请求行必须形如 "METHOD /path HTTP/x.y"，请求头必须以 CRLFCRLF 结束，
// 任何一项不满足都返回 ErrParse。
func ParseRequest(raw []byte) (*Request, error) {
	s := string(raw)

	lineEnd := strings.Index(s, CRLF)
	if lineEnd < 0 {
		return nil, fmt.Errorf("%w: request line not terminated", ErrParse)
	}
	req, err := parseRequestLine(s[:lineEnd])
	if err != nil {
		return nil, err
	}

	headEnd := strings.Index(s, CRLF+CRLF)
	if headEnd < 0 {
		return nil, fmt.Errorf("%w: header block not terminated", ErrParse)
	}
	// 请求行后面紧跟空行时 headEnd == lineEnd，没有请求头
	if headEnd > lineEnd {
		for _, line := range strings.Split(s[lineEnd+len(CRLF):headEnd], CRLF) {
			// 按第一个 ':' 分成两部分：key 和 value
			colon := strings.IndexByte(line, ':')
			if colon <= 0 {
				return nil, fmt.Errorf("%w: bad header line %q", ErrParse, line)
			}
			// 只去掉冒号后面的一个分隔空格，值本身原样保留
			req.Headers = append(req.Headers, Header{
				Name:  line[:colon],
				Value: strings.TrimPrefix(line[colon+1:], " "),
			})
		}
	}

	req.Body = []byte(s[headEnd+2*len(CRLF):])
	return req, nil
}

func parseRequestLine(line string) (*Request, error) {
	sp := strings.IndexByte(line, ' ')
	if sp <= 0 {
		return nil, fmt.Errorf("%w: missing method in %q", ErrParse, line)
	}
	method, rest := line[:sp], line[sp+1:]

	if !strings.HasPrefix(rest, "/") {
		return nil, fmt.Errorf("%w: request target must start with /: %q", ErrParse, line)
	}
	sp = strings.IndexByte(rest, ' ')
	if sp < 0 {
		return nil, fmt.Errorf("%w: missing version in %q", ErrParse, line)
	}
	target, version := rest[1:sp], rest[sp+1:]
	if !strings.HasPrefix(version, "HTTP/") || strings.ContainsAny(version, " \t") {
		return nil, fmt.Errorf("%w: bad version %q", ErrParse, version)
	}

	return &Request{
		Method:  method,
		Path:    target,
		Version: version,
	}, nil
}
