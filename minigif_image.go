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
	"fmt"
	"image"
	"io"

	"golang.org/x/image/draw"
)

// Canvas RGBA画布, 实现 Painter
type Canvas struct {
	img *image.RGBA
}

// NewCanvas 创建透明画布
// 入参: width 宽度, height 高度
// 返回: *Canvas 画布
func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Paint 绘制不透明像素, 越界像素被忽略
// 入参: x 轴坐标, y 轴坐标, rgb 颜色
func (c *Canvas) Paint(x, y int, rgb RGB) {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return
	}
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	p[0] = rgb.R
	p[1] = rgb.G
	p[2] = rgb.B
	p[3] = 0xFF
}

// RGBA 画布底层图像
// 返回: *image.RGBA 图像
func (c *Canvas) RGBA() *image.RGBA {
	return c.img
}

// Image 画布快照
// 返回: *image.RGBA 图像副本
func (c *Canvas) Image() *image.RGBA {
	dst := image.NewRGBA(c.img.Rect)
	draw.Copy(dst, c.img.Rect.Min, c.img, c.img.Rect, draw.Src, nil)
	return dst
}

// Clear 将区域恢复为透明
// 入参: r 区域
func (c *Canvas) Clear(r image.Rectangle) {
	draw.Draw(c.img, r, image.Transparent, image.Point{}, draw.Src)
}

// Restore 从快照恢复区域
// 入参: src 快照, r 区域
func (c *Canvas) Restore(src *image.RGBA, r image.Rectangle) {
	draw.Draw(c.img, r, src, r.Min, draw.Src)
}

// AppendRGB 以RGB三字节格式追加画布像素, 透明像素输出为黑色
// 入参: buf 目标缓冲区
// 返回: []byte 追加后的缓冲区
func (c *Canvas) AppendRGB(buf []byte) []byte {
	pix := c.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		buf = append(buf, pix[i], pix[i+1], pix[i+2])
	}
	return buf
}

// Animation 合成后的完整动画
type Animation struct {
	Width     int
	Height    int
	Frames    []*image.RGBA
	Delays    []int
	Disposals []DisposalMethod
	LoopCount int
}

// DecodeAll 解码所有帧并按处置方法合成
// 入参: r 读取器, opts 解码选项
// 返回: *Animation 动画, error 错误信息
func DecodeAll(r io.Reader, opts ...*Options) (*Animation, error) {
	src, err := seekableSource(r)
	if err != nil {
		return nil, err
	}
	var canvas *Canvas
	dec, err := NewDecoder(src, PainterFunc(func(x, y int, c RGB) {
		canvas.Paint(x, y, c)
	}), opts...)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	canvas = NewCanvas(dec.Width(), dec.Height())
	anim := &Animation{Width: dec.Width(), Height: dec.Height()}
	for {
		before := canvas.Image()
		res, err := dec.RenderFrame()
		if err != nil {
			return anim, err
		}
		if res == ResultGIFEnd {
			break
		}
		gce := dec.GraphicControl()
		anim.Frames = append(anim.Frames, canvas.Image())
		anim.Delays = append(anim.Delays, int(dec.FrameDelay()))
		anim.Disposals = append(anim.Disposals, gce.Disposal())
		rect := dec.Image().Bounds()
		switch gce.Disposal() {
		case DisposalBackground:
			canvas.Clear(rect)
		case DisposalPrevious:
			canvas.Restore(before, rect)
		}
	}
	if len(anim.Frames) == 0 {
		return anim, fmt.Errorf("%w: no image data", ErrFormat)
	}
	anim.LoopCount = dec.LoopCount()
	return anim, nil
}
