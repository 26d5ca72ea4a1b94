// Copyright 2026 肖其顿 (XIAO QI DUN)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// minigif 命令行工具: 查看、导出、推送GIF动画
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/klauspost/compress/zstd"
	"github.com/xiaoqidun/minigif"
)

const usage = `usage: minigif <command> [flags] <file.gif|file.gif.zst>

commands:
  info    print screen, frame and extension details
  frames  export composited frames as BMP files
  serve   stream frames to WebSocket clients
`

// sourceCloser 可关闭的字节源
type sourceCloser interface {
	minigif.Source
	io.Closer
}

// memorySource 内存字节源, 关闭为空操作
type memorySource struct {
	minigif.Source
}

func (memorySource) Close() error { return nil }

// commonFlags 各子命令共享的解码参数
type commonFlags struct {
	verbose          bool
	skipPlainText    bool
	rejectInterlaced bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "log block level decoding details")
	fs.BoolVar(&c.skipPlainText, "skip-text", false, "skip plain text extensions instead of failing")
	fs.BoolVar(&c.rejectInterlaced, "no-interlace", false, "fail on interlaced images")
}

func (c *commonFlags) options() *minigif.Options {
	opts := minigif.DefaultOptions()
	opts.SkipPlainText = c.skipPlainText
	opts.RejectInterlaced = c.rejectInterlaced
	if c.verbose {
		opts.Logger = log.New(os.Stderr, "[minigif] ", log.LstdFlags)
	}
	return opts
}

// parseArgs 解析子命令参数, 要求恰好一个文件参数
func parseArgs(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", fmt.Errorf("%s: expected exactly one input file", fs.Name())
	}
	return fs.Arg(0), nil
}

// openSource 打开输入文件, .zst 后缀先经zstd完整解压到内存
// 入参: path 文件路径
// 返回: sourceCloser 字节源, error 错误信息
func openSource(path string) (sourceCloser, error) {
	f, err := minigif.OpenFile(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", minigif.ErrIO, err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", minigif.ErrIO, err)
	}
	return memorySource{minigif.NewMemorySource(data)}, nil
}

// errorKind 错误分类标签
func errorKind(err error) string {
	switch {
	case errors.Is(err, minigif.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, minigif.ErrCorruptStream):
		return "corrupt"
	case errors.Is(err, minigif.ErrFormat):
		return "format"
	case errors.Is(err, minigif.ErrIO):
		return "io"
	}
	return "error"
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "frames":
		err = runFrames(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%s: %v", errorKind(err), err))
		os.Exit(1)
	}
}
