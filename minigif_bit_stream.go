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
	"errors"
	"fmt"
	"io"
)

// errEndOfData 子块序列在读满所需位数之前结束
var errEndOfData = errors.New("end of sub-block data")

// BitStream 跨子块的LZW码读取器, 低位优先
type BitStream struct {
	src       io.Reader
	block     [MaxSubBlockSize]byte
	size      int
	pos       int
	acc       uint32
	bitCount  uint
	exhausted bool
	lenBuf    [1]byte
}

// Reset 重置位流并绑定字节源
// 入参: src 字节源
func (b *BitStream) Reset(src io.Reader) {
	b.src = src
	b.size = 0
	b.pos = 0
	b.acc = 0
	b.bitCount = 0
	b.exhausted = false
}

// ReadCode 读取指定位宽的码
// 入参: width 位宽
// 返回: uint16 码值, error 错误信息
func (b *BitStream) ReadCode(width uint) (uint16, error) {
	for b.bitCount < width {
		if b.pos >= b.size {
			if err := b.refill(); err != nil {
				return 0, err
			}
		}
		b.acc |= uint32(b.block[b.pos]) << b.bitCount
		b.pos++
		b.bitCount += 8
	}
	code := uint16(b.acc & (1<<width - 1))
	b.acc >>= width
	b.bitCount -= width
	return code, nil
}

// Exhausted 子块序列是否已经结束
// 返回: bool 是否结束
func (b *BitStream) Exhausted() bool {
	return b.exhausted
}

// refill 读取下一个子块
// 返回: error 错误信息
func (b *BitStream) refill() error {
	if b.exhausted {
		return errEndOfData
	}
	if _, err := io.ReadFull(b.src, b.lenBuf[:]); err != nil {
		return b.fail(err)
	}
	size := int(b.lenBuf[0])
	if size == 0 {
		b.exhausted = true
		return errEndOfData
	}
	if _, err := io.ReadFull(b.src, b.block[:size]); err != nil {
		return b.fail(err)
	}
	b.size = size
	b.pos = 0
	return nil
}

// fail 处理读取错误, 源结束视为数据结束
// 入参: err 读取错误
// 返回: error 错误信息
func (b *BitStream) fail(err error) error {
	b.exhausted = true
	b.size = 0
	b.pos = 0
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errEndOfData
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
