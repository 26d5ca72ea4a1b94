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
	"errors"
	"fmt"
	"io"
	"log"
)

// Result 解析结果
type Result int

const (
	// ResultFailure 失败
	ResultFailure Result = 0
	// ResultFrameEnd 已输出一帧
	ResultFrameEnd Result = 1
	// ResultGIFEnd 到达结束符
	ResultGIFEnd Result = 2
)

// String 结果名称
// 返回: string 名称
func (r Result) String() string {
	switch r {
	case ResultFrameEnd:
		return "frame end"
	case ResultGIFEnd:
		return "gif end"
	default:
		return "failure"
	}
}

var signature = []byte("GIF89a")

// maxCommentSize 单条注释保留的最大字节数, 超出部分丢弃
const maxCommentSize = 64 * 1024

// document 解码句柄的全部状态
type document struct {
	src           Source
	painter       Painter
	logger        *log.Logger
	opts          Options
	screen        ScreenDescriptor
	gct           [MaxColorTableSize]RGB
	gctSize       int
	lct           [MaxColorTableSize]RGB
	lctSize       int
	gce           GraphicControl
	image         ImageDescriptor
	restartOffset int64
	dataOffset    int64
	loopCount     int
	frames        int
	comments      []string
	stream        BitStream
	lzw           lzwDecoder
	renderer      frameRenderer
	tmp           [3 * MaxColorTableSize]byte
}

// newDocument 创建文档并解析文件头
// 入参: src 字节源, painter 像素接收器, opts 解码选项
// 返回: *document 文档, error 错误信息
func newDocument(src Source, painter Painter, opts Options) (*document, error) {
	if painter == nil {
		painter = nopPainter{}
	}
	d := &document{
		src:           src,
		painter:       painter,
		logger:        opts.Logger,
		opts:          opts,
		restartOffset: -1,
		loopCount:     -1,
	}
	if err := d.readHeader(); err != nil {
		return nil, err
	}
	return d, nil
}

// readHeader 校验签名并读取逻辑屏幕描述符与全局颜色表
// 返回: error 错误信息
func (d *document) readHeader() error {
	if err := d.readFull(d.tmp[:6]); err != nil {
		return err
	}
	if !bytes.Equal(d.tmp[:6], signature) {
		return fmt.Errorf("%w: bad signature %q, want %q", ErrFormat, d.tmp[:6], signature)
	}
	if err := d.readFull(d.tmp[:7]); err != nil {
		return err
	}
	d.screen = parseScreenDescriptor(d.tmp[:7])
	if d.logger != nil {
		d.logger.Printf("screen: %dx%d gct=%t cr=%d sort=%t gct_size=%d",
			d.screen.Width, d.screen.Height, d.screen.GlobalTablePresent(),
			d.screen.ColorResolution(), d.screen.Sorted(), d.screen.GlobalTableSize())
	}
	if d.screen.GlobalTablePresent() {
		d.gctSize = d.screen.GlobalTableSize()
		if err := d.readColorTable(&d.gct, d.gctSize); err != nil {
			return err
		}
	}
	off, err := d.tell()
	if err != nil {
		return err
	}
	d.dataOffset = off
	return nil
}

// renderFrame 解析块直到输出一帧或到达结束符
// 返回: Result 结果, error 错误信息
func (d *document) renderFrame() (Result, error) {
	for {
		id, err := d.readByte()
		if err != nil {
			return ResultFailure, err
		}
		switch id {
		case blockTrailer:
			return ResultGIFEnd, nil
		case blockImage:
			if err := d.processImage(); err != nil {
				return ResultFailure, err
			}
			return ResultFrameEnd, nil
		case blockExtension:
			if err := d.processExtension(); err != nil {
				return ResultFailure, err
			}
		default:
			off, err := d.tell()
			if err != nil {
				return ResultFailure, err
			}
			return ResultFailure, fmt.Errorf("%w: unrecognized block identifier 0x%02x at offset 0x%08x", ErrFormat, id, off-1)
		}
	}
}

// processImage 解析图像块并解压像素
// 返回: error 错误信息
func (d *document) processImage() error {
	if err := d.readFull(d.tmp[:9]); err != nil {
		return err
	}
	desc := parseImageDescriptor(d.tmp[:9])
	d.image = desc
	if d.logger != nil {
		d.logger.Printf("image: [%d;%d] w=%d h=%d lct=%t interlaced=%t sort=%t lct_size=%d",
			desc.X, desc.Y, desc.Width, desc.Height, desc.LocalTablePresent(),
			desc.Interlaced(), desc.Sorted(), desc.LocalTableSize())
	}
	if desc.Interlaced() && d.opts.RejectInterlaced {
		return fmt.Errorf("%w: interlaced image", ErrUnsupported)
	}
	var table []RGB
	if desc.LocalTablePresent() {
		d.lctSize = desc.LocalTableSize()
		if err := d.readColorTable(&d.lct, d.lctSize); err != nil {
			return err
		}
		table = d.lct[:d.lctSize]
	} else {
		d.lctSize = 0
		table = d.gct[:d.gctSize]
	}
	if len(table) == 0 {
		return fmt.Errorf("%w: image without local or global color table", ErrFormat)
	}
	minCodeSize, err := d.readByte()
	if err != nil {
		return err
	}
	if minCodeSize < 2 || minCodeSize > 8 {
		return fmt.Errorf("%w: lzw minimum code size %d out of range", ErrFormat, minCodeSize)
	}
	d.stream.Reset(d.src)
	d.renderer.reset(desc, table, d.gce, d.painter)
	if err := d.lzw.decompress(&d.stream, minCodeSize, &d.renderer); err != nil {
		return err
	}
	// 位流按整子块读取, 源已位于下一个子块长度处
	if !d.stream.Exhausted() {
		if err := d.skipSubBlocks(); err != nil {
			return err
		}
	}
	d.frames++
	return nil
}

// processExtension 解析扩展块
// 返回: error 错误信息
func (d *document) processExtension() error {
	label, err := d.readByte()
	if err != nil {
		return err
	}
	size, err := d.readByte()
	if err != nil {
		return err
	}
	payload := d.tmp[:size]
	if err := d.readFull(payload); err != nil {
		return err
	}
	if d.logger != nil {
		d.logger.Printf("extension: type=0x%02x block_sz=%d", label, size)
	}
	switch label {
	case extGraphicControl:
		if size != gceSize {
			return fmt.Errorf("%w: graphic control block size %d, want %d", ErrFormat, size, gceSize)
		}
		if err := d.processGraphicControl(payload); err != nil {
			return err
		}
		return d.skipSubBlocks()
	case extComment:
		return d.processComment(payload)
	case extApplication:
		if size != applicationSize {
			return fmt.Errorf("%w: application block size %d, want %d", ErrFormat, size, applicationSize)
		}
		return d.processApplication(payload)
	case extPlainText:
		if !d.opts.SkipPlainText {
			return fmt.Errorf("%w: plain text extension", ErrUnsupported)
		}
		if size != plainTextSize {
			return fmt.Errorf("%w: plain text block size %d, want %d", ErrFormat, size, plainTextSize)
		}
		return d.skipSubBlocks()
	default:
		if d.logger != nil {
			d.logger.Printf("unrecognized extension type 0x%02x, skipped", label)
		}
		return d.skipSubBlocks()
	}
}

// processGraphicControl 激活图形控制状态并记录循环起点
// 入参: payload 4字节负载
// 返回: error 错误信息
func (d *document) processGraphicControl(payload []byte) error {
	d.gce = parseGraphicControl(payload)
	if d.logger != nil {
		d.logger.Printf("gce: disposal=%d user=%t transparent=%t delay=%d transparent_index=%d",
			d.gce.Disposal(), d.gce.UserInput(), d.gce.Transparent(), d.gce.Delay, d.gce.TransparentIndex)
	}
	if d.restartOffset >= 0 {
		return nil
	}
	off, err := d.tell()
	if err != nil {
		return err
	}
	// 引导符 + 类型 + 长度 + 负载
	d.restartOffset = off - int64(len(payload)) - 3
	return nil
}

// processComment 处理注释扩展
// 入参: payload 第一个子块
// 返回: error 错误信息
func (d *document) processComment(payload []byte) error {
	if d.logger != nil {
		d.logger.Printf("comment: %s", payload)
	}
	if !d.opts.KeepComments {
		return d.skipSubBlocks()
	}
	text := append([]byte(nil), payload...)
	for {
		size, err := d.readByte()
		if err != nil {
			return err
		}
		if size == blockTerminator {
			break
		}
		if err := d.readFull(d.tmp[:size]); err != nil {
			return err
		}
		n := min(int(size), maxCommentSize-len(text))
		text = append(text, d.tmp[:n]...)
	}
	d.comments = append(d.comments, string(text))
	return nil
}

// processApplication 处理应用扩展, 识别NETSCAPE循环次数
// 入参: payload 11字节标识与认证码
// 返回: error 错误信息
func (d *document) processApplication(payload []byte) error {
	id := string(payload)
	if id != "NETSCAPE2.0" && id != "ANIMEXTS1.0" {
		return d.skipSubBlocks()
	}
	size, err := d.readByte()
	if err != nil {
		return err
	}
	if size == blockTerminator {
		return nil
	}
	if err := d.readFull(d.tmp[:size]); err != nil {
		return err
	}
	if size == 3 && d.tmp[0] == 1 {
		d.loopCount = int(d.tmp[1]) | int(d.tmp[2])<<8
	}
	return d.skipSubBlocks()
}

// rewind 定位到循环起点
// 返回: error 错误信息
func (d *document) rewind() error {
	off := d.restartOffset
	if off < 0 {
		off = d.dataOffset
	}
	if _, err := d.src.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// readColorTable 读取颜色表
// 入参: table 目标颜色表, size 条目数
// 返回: error 错误信息
func (d *document) readColorTable(table *[MaxColorTableSize]RGB, size int) error {
	buf := d.tmp[:3*size]
	if err := d.readFull(buf); err != nil {
		return err
	}
	for i := 0; i < size; i++ {
		table[i] = RGB{R: buf[3*i], G: buf[3*i+1], B: buf[3*i+2]}
	}
	return nil
}

// skipSubBlocks 跳过子块直到终止块
// 返回: error 错误信息
func (d *document) skipSubBlocks() error {
	for {
		size, err := d.readByte()
		if err != nil {
			return err
		}
		if size == blockTerminator {
			return nil
		}
		if err := d.skip(int64(size)); err != nil {
			return err
		}
	}
}

// readFull 读满缓冲区
// 入参: p 缓冲区
// 返回: error 错误信息
func (d *document) readFull(p []byte) error {
	if _, err := io.ReadFull(d.src, p); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// readByte 读取一个字节
// 返回: byte 字节, error 错误信息
func (d *document) readByte() (byte, error) {
	if err := d.readFull(d.tmp[:1]); err != nil {
		return 0, err
	}
	return d.tmp[0], nil
}

// skip 相对当前位置前移
// 入参: n 字节数
// 返回: error 错误信息
func (d *document) skip(n int64) error {
	if n == 0 {
		return nil
	}
	if _, err := d.src.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// tell 查询当前偏移
// 返回: int64 偏移, error 错误信息
func (d *document) tell() (int64, error) {
	off, err := d.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return off, nil
}
