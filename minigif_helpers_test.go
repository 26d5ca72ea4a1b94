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
	"compress/lzw"
	"testing"
)

// paint 一次像素绘制记录
type paint struct {
	x, y int
	c    RGB
}

// recorder 记录全部绘制调用
type recorder struct {
	paints []paint
}

func (r *recorder) Paint(x, y int, c RGB) {
	r.paints = append(r.paints, paint{x, y, c})
}

func (r *recorder) reset() {
	r.paints = r.paints[:0]
}

// grayTable 生成索引即灰度的颜色表
func grayTable(n int) []RGB {
	t := make([]RGB, n)
	for i := range t {
		t[i] = RGB{R: uint8(i), G: uint8(i), B: uint8(i)}
	}
	return t
}

// tableExponent 颜色表大小对应的字段值
func tableExponent(n int) byte {
	e := byte(0)
	for 1<<(e+1) < n {
		e++
	}
	return e
}

// gifBuilder 测试用GIF字节流构造器
type gifBuilder struct {
	buf bytes.Buffer
}

func newGIF(w, h int, gct []RGB) *gifBuilder {
	b := &gifBuilder{}
	b.buf.WriteString("GIF89a")
	var fields byte
	if len(gct) > 0 {
		fields = 0x80 | 0x70 | tableExponent(len(gct))
	}
	b.buf.Write([]byte{byte(w), byte(w >> 8), byte(h), byte(h >> 8), fields, 0, 0})
	b.table(gct)
	return b
}

func (b *gifBuilder) table(t []RGB) {
	if len(t) == 0 {
		return
	}
	size := 1 << (tableExponent(len(t)) + 1)
	for i := 0; i < size; i++ {
		var c RGB
		if i < len(t) {
			c = t[i]
		}
		b.buf.Write([]byte{c.R, c.G, c.B})
	}
}

func (b *gifBuilder) offset() int {
	return b.buf.Len()
}

func (b *gifBuilder) gce(fields byte, delay uint16, transparent byte) *gifBuilder {
	b.buf.Write([]byte{0x21, 0xF9, 4, fields, byte(delay), byte(delay >> 8), transparent, 0})
	return b
}

func (b *gifBuilder) extension(label byte, payload []byte, subBlocks ...[]byte) *gifBuilder {
	b.buf.Write([]byte{0x21, label, byte(len(payload))})
	b.buf.Write(payload)
	for _, s := range subBlocks {
		b.buf.WriteByte(byte(len(s)))
		b.buf.Write(s)
	}
	b.buf.WriteByte(0)
	return b
}

func (b *gifBuilder) netscape(loops int) *gifBuilder {
	return b.extension(0xFF, []byte("NETSCAPE2.0"), []byte{1, byte(loops), byte(loops >> 8)})
}

func (b *gifBuilder) comment(s string) *gifBuilder {
	b.buf.Write([]byte{0x21, 0xFE})
	for len(s) > 0 {
		n := min(len(s), 255)
		b.buf.WriteByte(byte(n))
		b.buf.WriteString(s[:n])
		s = s[n:]
	}
	b.buf.WriteByte(0)
	return b
}

type imageSpec struct {
	x, y, w, h int
	lct        []RGB
	interlaced bool
	minCode    int
}

func (b *gifBuilder) descriptor(s imageSpec) {
	var fields byte
	if len(s.lct) > 0 {
		fields = 0x80 | tableExponent(len(s.lct))
	}
	if s.interlaced {
		fields |= 0x40
	}
	b.buf.Write([]byte{0x2C,
		byte(s.x), byte(s.x >> 8), byte(s.y), byte(s.y >> 8),
		byte(s.w), byte(s.w >> 8), byte(s.h), byte(s.h >> 8), fields})
	b.table(s.lct)
	b.buf.WriteByte(byte(s.minCode))
}

// image 写入图像块, pixels 为编码顺序的颜色索引
func (b *gifBuilder) image(t *testing.T, s imageSpec, pixels []byte) *gifBuilder {
	t.Helper()
	if s.minCode == 0 {
		s.minCode = 2
	}
	b.descriptor(s)
	b.subBlocks(compressLZW(t, s.minCode, pixels))
	return b
}

// rawImage 写入图像块, data 为已编码的LZW数据
func (b *gifBuilder) rawImage(s imageSpec, data []byte) *gifBuilder {
	b.descriptor(s)
	b.subBlocks(data)
	return b
}

func (b *gifBuilder) subBlocks(data []byte) {
	for len(data) > 0 {
		n := min(len(data), 255)
		b.buf.WriteByte(byte(n))
		b.buf.Write(data[:n])
		data = data[n:]
	}
	b.buf.WriteByte(0)
}

func (b *gifBuilder) trailer() *gifBuilder {
	b.buf.WriteByte(0x3B)
	return b
}

func (b *gifBuilder) bytes() []byte {
	return b.buf.Bytes()
}

// compressLZW 使用 compress/lzw 编码像素
func compressLZW(t *testing.T, litWidth int, pixels []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	w := lzw.NewWriter(&out, lzw.LSB, litWidth)
	if _, err := w.Write(pixels); err != nil {
		t.Fatalf("lzw write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("lzw close: %v", err)
	}
	return out.Bytes()
}

// packCodes 以固定位宽低位优先打包码
func packCodes(width uint, codes ...uint16) []byte {
	var out []byte
	var acc uint32
	var n uint
	for _, c := range codes {
		acc |= uint32(c) << n
		n += width
		for n >= 8 {
			out = append(out, byte(acc))
			acc >>= 8
			n -= 8
		}
	}
	if n > 0 {
		out = append(out, byte(acc))
	}
	return out
}

// rasterPaints 光栅顺序的期望绘制序列
func rasterPaints(x0, y0, w, h int, table []RGB, pixels []byte) []paint {
	var out []paint
	for i, p := range pixels {
		out = append(out, paint{x0 + i%w, y0 + i/w, table[p]})
	}
	return out
}

func equalPaints(t *testing.T, got, want []paint) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d paints, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paint %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
