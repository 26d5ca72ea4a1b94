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

// Package minigif 一个逐帧、零分配的纯 Go 语言 GIF89a 解码器
package minigif

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
)

// 解码错误类型
var (
	ErrFormat        = errors.New("invalid gif format")
	ErrIO            = errors.New("gif source error")
	ErrCorruptStream = errors.New("corrupt lzw stream")
	ErrUnsupported   = errors.New("unsupported gif feature")
	// ErrClosed 解码器已关闭
	ErrClosed = errors.New("gif decoder closed")
)

// Options 解码选项
type Options struct {
	// Logger 调试日志, 为空时不输出
	Logger *log.Logger
	// RejectInterlaced 遇到隔行扫描图像时返回 ErrUnsupported
	RejectInterlaced bool
	// SkipPlainText 跳过纯文本扩展, 否则返回 ErrUnsupported
	SkipPlainText bool
	// ConsumeDelay FrameDelay 读取后清零
	ConsumeDelay bool
	// KeepComments 收集注释扩展内容, 每条最多保留64KiB, 开启后解码注释时会分配内存
	KeepComments bool
}

// DefaultOptions 默认解码选项
// 返回: *Options 解码选项
func DefaultOptions() *Options {
	return &Options{}
}

// Decoder GIF解码器, 不可并发使用
// Close 之后访问器仍返回最后的解码状态, RenderFrame 与 Rewind 返回 ErrClosed
type Decoder struct {
	doc    *document
	owned  io.Closer
	closed bool
}

// NewDecoder 创建解码器并解析文件头
// 入参: src 字节源, painter 像素接收器, opts 解码选项
// 返回: *Decoder 解码器, error 错误信息
func NewDecoder(src Source, painter Painter, opts ...*Options) (*Decoder, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrIO)
	}
	o := Options{}
	if len(opts) > 0 && opts[0] != nil {
		o = *opts[0]
	}
	doc, err := newDocument(src, painter, o)
	if err != nil {
		return nil, err
	}
	return &Decoder{doc: doc}, nil
}

// OpenDecoder 打开文件并创建解码器, Close 时关闭文件
// 入参: path 文件路径, painter 像素接收器, opts 解码选项
// 返回: *Decoder 解码器, error 错误信息
func OpenDecoder(path string, painter Painter, opts ...*Options) (*Decoder, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := NewDecoder(f, painter, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	dec.owned = f
	return dec, nil
}

// RenderFrame 解码下一帧
// 返回: Result 结果, error 错误信息
func (d *Decoder) RenderFrame() (Result, error) {
	if d.closed {
		return ResultFailure, ErrClosed
	}
	return d.doc.renderFrame()
}

// FrameDelay 当前图形控制状态的帧延迟
// 返回: uint16 延迟, 单位百分之一秒
func (d *Decoder) FrameDelay() uint16 {
	delay := d.doc.gce.Delay
	if d.doc.opts.ConsumeDelay {
		d.doc.gce.Delay = 0
	}
	return delay
}

// Rewind 回到动画循环起点
// 返回: error 错误信息
func (d *Decoder) Rewind() error {
	if d.closed {
		return ErrClosed
	}
	return d.doc.rewind()
}

// Close 释放解码器
// 返回: error 错误信息
func (d *Decoder) Close() error {
	d.closed = true
	d.doc.src = nil
	d.doc.stream.Reset(nil)
	if d.owned == nil {
		return nil
	}
	err := d.owned.Close()
	d.owned = nil
	return err
}

// Width 逻辑屏幕宽度
// 返回: int 宽度
func (d *Decoder) Width() int {
	return int(d.doc.screen.Width)
}

// Height 逻辑屏幕高度
// 返回: int 高度
func (d *Decoder) Height() int {
	return int(d.doc.screen.Height)
}

// Screen 逻辑屏幕描述符
// 返回: ScreenDescriptor 描述符
func (d *Decoder) Screen() ScreenDescriptor {
	return d.doc.screen
}

// GraphicControl 当前图形控制状态
// 返回: GraphicControl 状态
func (d *Decoder) GraphicControl() GraphicControl {
	return d.doc.gce
}

// Image 最近一次解码的图像描述符
// 返回: ImageDescriptor 描述符
func (d *Decoder) Image() ImageDescriptor {
	return d.doc.image
}

// GlobalColorTable 全局颜色表
// 返回: []RGB 颜色表, 不存在时为空
func (d *Decoder) GlobalColorTable() []RGB {
	return d.doc.gct[:d.doc.gctSize]
}

// LoopCount NETSCAPE循环次数, 0表示无限, -1表示未声明
// 返回: int 循环次数
func (d *Decoder) LoopCount() int {
	return d.doc.loopCount
}

// Comments 已收集的注释
// 返回: []string 注释列表
func (d *Decoder) Comments() []string {
	return d.doc.comments
}

// Frames 已解码帧数
// 返回: int 帧数
func (d *Decoder) Frames() int {
	return d.doc.frames
}

// Decode 解码GIF的第一帧
// 入参: r 读取器
// 返回: image.Image 图像, error 错误信息
func Decode(r io.Reader) (image.Image, error) {
	src, err := seekableSource(r)
	if err != nil {
		return nil, err
	}
	var canvas *Canvas
	dec, err := NewDecoder(src, PainterFunc(func(x, y int, c RGB) {
		canvas.Paint(x, y, c)
	}))
	if err != nil {
		return nil, err
	}
	canvas = NewCanvas(dec.Width(), dec.Height())
	res, err := dec.RenderFrame()
	if err != nil {
		return nil, err
	}
	if res != ResultFrameEnd {
		return nil, fmt.Errorf("%w: no image data", ErrFormat)
	}
	return canvas.Image(), nil
}

// maxHeaderSize 签名 + 逻辑屏幕描述符 + 最大全局颜色表
const maxHeaderSize = 6 + 7 + 3*MaxColorTableSize

// DecodeConfig 获取GIF图像配置
// 入参: r 读取器
// 返回: image.Config 图像配置, error 错误信息
func DecodeConfig(r io.Reader) (image.Config, error) {
	header, err := io.ReadAll(io.LimitReader(r, maxHeaderSize))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	dec, err := NewDecoder(bytes.NewReader(header), nil)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      dec.Width(),
		Height:     dec.Height(),
	}, nil
}

func init() {
	image.RegisterFormat("minigif", "GIF89a", Decode, DecodeConfig)
}
