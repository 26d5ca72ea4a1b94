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

package minigif

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Source 字节源, Seek(0, io.SeekCurrent) 用于查询当前偏移
type Source interface {
	io.Reader
	io.Seeker
}

// Painter 像素接收器
type Painter interface {
	// Paint 绘制一个可见像素
	Paint(x, y int, c RGB)
}

// PainterFunc 函数形式的像素接收器
type PainterFunc func(x, y int, c RGB)

// Paint 绘制一个可见像素
// 入参: x 轴坐标, y 轴坐标, c 颜色
func (f PainterFunc) Paint(x, y int, c RGB) {
	f(x, y, c)
}

type nopPainter struct{}

func (nopPainter) Paint(int, int, RGB) {}

// NewMemorySource 创建内存字节源
// 入参: data GIF数据
// 返回: Source 字节源
func NewMemorySource(data []byte) Source {
	return bytes.NewReader(data)
}

// OpenFile 打开文件字节源, 调用方负责关闭
// 入参: path 文件路径
// 返回: *os.File 文件, error 错误信息
func OpenFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return f, nil
}

// seekableSource 将任意读取器转换为可定位字节源
// 入参: r 读取器
// 返回: Source 字节源, error 错误信息
func seekableSource(r io.Reader) (Source, error) {
	if rs, ok := r.(Source); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return bytes.NewReader(data), nil
}
