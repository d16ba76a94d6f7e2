package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// watchStdin 逐行读取 r，读到 "q" 时调用 cancel 关闭服务器。
// r 读完或出错时直接返回，不影响服务器。
func watchStdin(r io.Reader, cancel func(), log zerolog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "q" {
			log.Info().Msg("收到 q，开始关闭服务器")
			cancel()
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("读取标准输入失败")
	}
}
