package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/astaxie/beego/config"
	"github.com/rs/zerolog"
)

// maxRequestLimit 单个请求允许配置的上限
const maxRequestLimit = 1 << 30

// Config 服务器配置
type Config struct {
	Addr                string
	Directory           string // --directory 传入的目录，可以为空
	MaxRequestBytes     int
	MaxRequestLineBytes int
	ReadTimeout         time.Duration // 0 表示不设超时
	LogLevel            string
	LogFormat           string // console | json
	StdinQuit           bool   // 从标准输入读到 "q" 时退出
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Addr:                "0.0.0.0:4221",
		MaxRequestBytes:     64 << 10,
		MaxRequestLineBytes: 8 << 10,
		LogLevel:            "info",
		LogFormat:           "console",
	}
}

// Validate 检查配置是否合法
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr 不能为空")
	case c.MaxRequestBytes <= 0 || c.MaxRequestBytes > maxRequestLimit:
		return fmt.Errorf("max_request_bytes 必须在 1 到 %d 之间: %d", maxRequestLimit, c.MaxRequestBytes)
	case c.MaxRequestLineBytes <= 0 || c.MaxRequestLineBytes > c.MaxRequestBytes:
		return fmt.Errorf("max_request_line_bytes 必须在 1 到 %d 之间: %d", c.MaxRequestBytes, c.MaxRequestLineBytes)
	case c.ReadTimeout < 0:
		return fmt.Errorf("read_timeout 不能为负数: %s", c.ReadTimeout)
	case c.LogFormat != "console" && c.LogFormat != "json":
		return fmt.Errorf("未知的 log_format: %q", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("未知的 log_level: %w", err)
	}
	return nil
}

// loadConfigFile 用配置文件中的值覆盖 cfg，.json 用 json 解析，其余按 ini 解析
func loadConfigFile(cfg *Config, path string) error {
	adapter := "ini"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		adapter = "json"
	}
	ac, err := config.NewConfig(adapter, path)
	if err != nil {
		return fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	cfg.Addr = ac.DefaultString("addr", cfg.Addr)
	cfg.Directory = ac.DefaultString("directory", cfg.Directory)
	cfg.MaxRequestBytes = ac.DefaultInt("max_request_bytes", cfg.MaxRequestBytes)
	cfg.MaxRequestLineBytes = ac.DefaultInt("max_request_line_bytes", cfg.MaxRequestLineBytes)
	if v := ac.String("read_timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("配置项 read_timeout 非法: %w", err)
		}
		cfg.ReadTimeout = d
	}
	cfg.LogLevel = ac.DefaultString("log_level", cfg.LogLevel)
	cfg.LogFormat = ac.DefaultString("log_format", cfg.LogFormat)
	cfg.StdinQuit = ac.DefaultBool("stdin_quit", cfg.StdinQuit)
	return nil
}

// parseArgs 解析命令行参数。
// 优先级：命令行 > 配置文件 > 默认值。
// 示例：./your_program.sh --directory /tmp/data/
func parseArgs(args []string, output io.Writer) (Config, error) {
	cfg := DefaultConfig()
	flags := DefaultConfig()

	fs := flag.NewFlagSet("http-server", flag.ContinueOnError)
	fs.SetOutput(output)
	configPath := fs.String("config", "", "配置文件路径（ini 或 json）")
	fs.StringVar(&flags.Addr, "addr", flags.Addr, "监听地址")
	fs.StringVar(&flags.Directory, "directory", flags.Directory, "files/ 路由读写文件的目录")
	fs.IntVar(&flags.MaxRequestBytes, "max-request-bytes", flags.MaxRequestBytes, "单个请求的最大字节数，超过返回 414")
	fs.IntVar(&flags.MaxRequestLineBytes, "max-request-line-bytes", flags.MaxRequestLineBytes, "请求行的最大字节数，超过返回 414")
	fs.DurationVar(&flags.ReadTimeout, "read-timeout", flags.ReadTimeout, "读取请求的超时时间，0 表示不限制")
	fs.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "日志级别")
	fs.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "日志格式：console 或 json")
	fs.BoolVar(&flags.StdinQuit, "stdin-quit", flags.StdinQuit, "从标准输入读到 q 时关闭服务器")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *configPath != "" {
		if err := loadConfigFile(&cfg, *configPath); err != nil {
			return cfg, err
		}
	}

	// 只有显式传入的参数才覆盖配置文件
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = flags.Addr
		case "directory":
			cfg.Directory = flags.Directory
		case "max-request-bytes":
			cfg.MaxRequestBytes = flags.MaxRequestBytes
		case "max-request-line-bytes":
			cfg.MaxRequestLineBytes = flags.MaxRequestLineBytes
		case "read-timeout":
			cfg.ReadTimeout = flags.ReadTimeout
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "log-format":
			cfg.LogFormat = flags.LogFormat
		case "stdin-quit":
			cfg.StdinQuit = flags.StdinQuit
		}
	})

	return cfg, cfg.Validate()
}

// newLogger 按配置创建根 logger
func newLogger(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := w
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
