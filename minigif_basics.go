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

import "image"

const (
	// MaxColorTableSize 颜色表最大条目数
	MaxColorTableSize = 256
	// MaxDictSize LZW字典容量
	MaxDictSize = 4096
	// MaxCodeWidth LZW码最大位宽
	MaxCodeWidth = 12
	// MaxSubBlockSize 子块最大字节数
	MaxSubBlockSize = 255
)

// 块标识符
const (
	blockTerminator = 0x00
	blockExtension  = 0x21
	blockImage      = 0x2C
	blockTrailer    = 0x3B
)

// 扩展类型
const (
	extPlainText      = 0x01
	extGraphicControl = 0xF9
	extComment        = 0xFE
	extApplication    = 0xFF
)

// 扩展负载长度
const (
	gceSize         = 4
	applicationSize = 11
	plainTextSize   = 12
)

// DisposalMethod 帧处置方法
type DisposalMethod uint8

const (
	// DisposalNone 未指定
	DisposalNone DisposalMethod = 0
	// DisposalKeep 保留当前帧
	DisposalKeep DisposalMethod = 1
	// DisposalBackground 恢复为背景
	DisposalBackground DisposalMethod = 2
	// DisposalPrevious 恢复为上一帧
	DisposalPrevious DisposalMethod = 3
)

// RGB 颜色表条目
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// ScreenDescriptor 逻辑屏幕描述符
type ScreenDescriptor struct {
	Width           uint16
	Height          uint16
	Fields          uint8
	BackgroundIndex uint8
	AspectRatio     uint8
}

// GlobalTablePresent 是否存在全局颜色表
// 返回: bool 是否存在
func (s ScreenDescriptor) GlobalTablePresent() bool {
	return s.Fields&0x80 != 0
}

// ColorResolution 颜色分辨率
// 返回: uint8 每个原色的位数减一
func (s ScreenDescriptor) ColorResolution() uint8 {
	return (s.Fields >> 4) & 0x07
}

// Sorted 全局颜色表是否已排序
// 返回: bool 是否排序
func (s ScreenDescriptor) Sorted() bool {
	return s.Fields&0x08 != 0
}

// GlobalTableSize 全局颜色表条目数
// 返回: int 条目数
func (s ScreenDescriptor) GlobalTableSize() int {
	return 1 << ((s.Fields & 0x07) + 1)
}

// parseScreenDescriptor 解析逻辑屏幕描述符
// 入参: b 7字节原始数据
// 返回: ScreenDescriptor 描述符
func parseScreenDescriptor(b []byte) ScreenDescriptor {
	return ScreenDescriptor{
		Width:           uint16(b[0]) | uint16(b[1])<<8,
		Height:          uint16(b[2]) | uint16(b[3])<<8,
		Fields:          b[4],
		BackgroundIndex: b[5],
		AspectRatio:     b[6],
	}
}

// ImageDescriptor 图像描述符
type ImageDescriptor struct {
	X      uint16
	Y      uint16
	Width  uint16
	Height uint16
	Fields uint8
}

// LocalTablePresent 是否存在局部颜色表
// 返回: bool 是否存在
func (i ImageDescriptor) LocalTablePresent() bool {
	return i.Fields&0x80 != 0
}

// Interlaced 是否隔行扫描
// 返回: bool 是否隔行
func (i ImageDescriptor) Interlaced() bool {
	return i.Fields&0x40 != 0
}

// Sorted 局部颜色表是否已排序
// 返回: bool 是否排序
func (i ImageDescriptor) Sorted() bool {
	return i.Fields&0x20 != 0
}

// LocalTableSize 局部颜色表条目数
// 返回: int 条目数
func (i ImageDescriptor) LocalTableSize() int {
	return 1 << ((i.Fields & 0x07) + 1)
}

// PixelCount 像素总数
// 返回: int 像素数
func (i ImageDescriptor) PixelCount() int {
	return int(i.Width) * int(i.Height)
}

// Bounds 图像在逻辑屏幕上的区域
// 返回: image.Rectangle 区域
func (i ImageDescriptor) Bounds() image.Rectangle {
	return image.Rect(int(i.X), int(i.Y), int(i.X)+int(i.Width), int(i.Y)+int(i.Height))
}

// parseImageDescriptor 解析图像描述符
// 入参: b 9字节原始数据
// 返回: ImageDescriptor 描述符
func parseImageDescriptor(b []byte) ImageDescriptor {
	return ImageDescriptor{
		X:      uint16(b[0]) | uint16(b[1])<<8,
		Y:      uint16(b[2]) | uint16(b[3])<<8,
		Width:  uint16(b[4]) | uint16(b[5])<<8,
		Height: uint16(b[6]) | uint16(b[7])<<8,
		Fields: b[8],
	}
}

// GraphicControl 图形控制扩展状态
type GraphicControl struct {
	Fields           uint8
	Delay            uint16
	TransparentIndex uint8
}

// Disposal 处置方法
// 返回: DisposalMethod 处置方法
func (g GraphicControl) Disposal() DisposalMethod {
	return DisposalMethod((g.Fields >> 2) & 0x07)
}

// UserInput 是否等待用户输入
// 返回: bool 是否等待
func (g GraphicControl) UserInput() bool {
	return g.Fields&0x02 != 0
}

// Transparent 是否启用透明色
// 返回: bool 是否启用
func (g GraphicControl) Transparent() bool {
	return g.Fields&0x01 != 0
}

// parseGraphicControl 解析图形控制扩展
// 入参: b 4字节负载
// 返回: GraphicControl 状态
func parseGraphicControl(b []byte) GraphicControl {
	return GraphicControl{
		Fields:           b[0],
		Delay:            uint16(b[1]) | uint16(b[2])<<8,
		TransparentIndex: b[3],
	}
}
