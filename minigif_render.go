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

import "fmt"

var (
	interlaceOffsets = [4]int{0, 4, 2, 1}
	interlaceSteps   = [4]int{8, 8, 4, 2}
)

// resolveColor 将颜色索引解析为RGB
// 入参: index 颜色索引, table 当前颜色表, gce 图形控制状态
// 返回: RGB 颜色, bool 是否可见, error 错误信息
func resolveColor(index uint8, table []RGB, gce GraphicControl) (RGB, bool, error) {
	if gce.Transparent() && index == gce.TransparentIndex {
		return RGB{}, false, nil
	}
	if int(index) >= len(table) {
		return RGB{}, false, fmt.Errorf("%w: color index %d out of table size %d", ErrCorruptStream, index, len(table))
	}
	return table[index], true, nil
}

// frameRenderer 按光栅或隔行顺序输出像素
type frameRenderer struct {
	painter    Painter
	table      []RGB
	gce        GraphicControl
	x0, y0     int
	w, h       int
	x, row     int
	pass       int
	interlaced bool
	remaining  int
}

// reset 为新图像块重置渲染状态
// 入参: desc 图像描述符, table 当前颜色表, gce 图形控制状态, painter 像素接收器
func (r *frameRenderer) reset(desc ImageDescriptor, table []RGB, gce GraphicControl, painter Painter) {
	r.painter = painter
	r.table = table
	r.gce = gce
	r.x0 = int(desc.X)
	r.y0 = int(desc.Y)
	r.w = int(desc.Width)
	r.h = int(desc.Height)
	r.x = 0
	r.row = 0
	r.pass = 0
	r.interlaced = desc.Interlaced()
	r.remaining = desc.PixelCount()
}

// done 是否已输出全部像素
// 返回: bool 是否完成
func (r *frameRenderer) done() bool {
	return r.remaining == 0
}

// emit 输出一个像素索引
// 入参: index 颜色索引
// 返回: error 错误信息
func (r *frameRenderer) emit(index uint8) error {
	if r.remaining == 0 {
		return nil
	}
	c, visible, err := resolveColor(index, r.table, r.gce)
	if err != nil {
		return err
	}
	if visible {
		r.painter.Paint(r.x0+r.x, r.y0+r.row, c)
	}
	r.remaining--
	r.advance()
	return nil
}

// advance 移动到下一个像素位置
func (r *frameRenderer) advance() {
	r.x++
	if r.x < r.w {
		return
	}
	r.x = 0
	if !r.interlaced {
		r.row++
		return
	}
	r.row += interlaceSteps[r.pass]
	for r.row >= r.h && r.pass < len(interlaceSteps)-1 {
		r.pass++
		r.row = interlaceOffsets[r.pass]
	}
}
