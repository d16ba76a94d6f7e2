package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "服务器启动失败: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// 解析命令行参数，获取 --directory 传入的目录
	cfg, err := parseArgs(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	// Ctrl+C / SIGTERM 或者标准输入的 q 都会取消 ctx
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.StdinQuit {
		go watchStdin(os.Stdin, stop, log)
	}

	handler := NewHandler(NewFileStore(cfg.Directory), log)
	return NewServer(cfg, handler, log).ListenAndServe(ctx)
}
