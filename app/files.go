package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore 负责 --directory 目录下文件的读写。
// 同一个目标路径上的写入会被串行化，不同路径之间互不影响。
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	sync.Mutex
	refs int
}

// NewFileStore 创建一个以 dir 为根的 FileStore，dir 为空表示当前工作目录
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:   dir,
		locks: make(map[string]*pathLock),
	}
}

// Dir 返回配置的根目录
func (s *FileStore) Dir() string { return s.dir }

// Read 读取 <dir>/<name> 的全部字节
func (s *FileStore) Read(name string) ([]byte, error) {
	target, err := resolve(s.dir, name)
	if err != nil {
		return nil, err
	}
	return readFile(target)
}

// ReadRelative 读取相对于进程工作目录的文件
func (s *FileStore) ReadRelative(path string) ([]byte, error) {
	target, err := resolve("", path)
	if err != nil {
		return nil, err
	}
	return readFile(target)
}

// Write 把 body 原样写入 <dir>/<name>，已存在则截断覆盖。
// 目录不存在时会先创建。
func (s *FileStore) Write(name string, body []byte) error {
	if name == "" {
		return fmt.Errorf("%w: empty file name", ErrWrite)
	}
	// 先检查路径，非法路径不应该留下任何副作用（包括创建目录）
	target, err := resolve(s.dir, name)
	if err != nil {
		return err
	}
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o777); err != nil {
			return fmt.Errorf("%w: create directory: %v", ErrWrite, err)
		}
	}

	unlock := s.lock(target)
	defer unlock()

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if _, err = file.Write(body); err != nil {
		file.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// lock 获取 target 上的写锁，返回的函数用于释放
func (s *FileStore) lock(target string) func() {
	s.mu.Lock()
	l, ok := s.locks[target]
	if !ok {
		l = &pathLock{}
		s.locks[target] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, target)
		}
		s.mu.Unlock()
	}
}

func readFile(target string) ([]byte, error) {
	// 按原始字节读取，不做任何换行处理
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathInvalid, err)
	}
	return data, nil
}

// resolve 把 name 拼到 root 下面，并保证结果不会跑出 root。
// 含有 ".." 片段的路径直接拒绝；符号链接会被展开后再检查一次。
func resolve(root, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathInvalid)
	}
	if hasDotDot(name) {
		return "", fmt.Errorf("%w: %q escapes root", ErrPathInvalid, name)
	}
	if root == "" {
		root = "."
	}
	base, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathInvalid, err)
	}
	target := filepath.Join(base, filepath.FromSlash(name))
	if !within(base, target) || !within(realPath(base), realPath(target)) {
		return "", fmt.Errorf("%w: %q escapes root", ErrPathInvalid, name)
	}
	return target, nil
}

// within 判断 target 是否在 base 之下（不含 base 本身）
func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// realPath 展开 path 中已经存在的最长前缀里的符号链接，
// 还不存在的部分（例如待创建的文件）原样拼回去。
// 遇到悬空的符号链接返回空串，调用方会当成越界处理。
func realPath(path string) string {
	rest := ""
	for p := path; ; {
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			return filepath.Join(resolved, rest)
		}
		if fi, err := os.Lstat(p); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			return ""
		}
		parent := filepath.Dir(p)
		if parent == p {
			return path
		}
		rest = filepath.Join(filepath.Base(p), rest)
		p = parent
	}
}

func hasDotDot(path string) bool {
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
