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
)

// dictCell LZW字典条目
type dictCell struct {
	prefix uint16
	suffix uint8
}

// lzwDecoder LZW解压器, 字典与栈均为固定容量
type lzwDecoder struct {
	dict  [MaxDictSize]dictCell
	stack [MaxDictSize]uint8
	sp    int
}

// push 压栈
// 入参: v 字节
// 返回: error 错误信息
func (l *lzwDecoder) push(v uint8) error {
	if l.sp >= len(l.stack) {
		return fmt.Errorf("%w: lzw stack overflow", ErrCorruptStream)
	}
	l.stack[l.sp] = v
	l.sp++
	return nil
}

// pop 出栈
// 返回: uint8 字节
func (l *lzwDecoder) pop() uint8 {
	l.sp--
	return l.stack[l.sp]
}

// decompress 解压一个图像块的LZW数据并输出像素
// 入参: bs 位流, minCodeSize 最小码长, r 帧渲染器
// 返回: error 错误信息
func (l *lzwDecoder) decompress(bs *BitStream, minCodeSize uint8, r *frameRenderer) error {
	clearCode := uint16(1) << minCodeSize
	endCode := clearCode + 1
	width := uint(minCodeSize) + 1
	limit := uint16(1) << width
	next := endCode + 1
	for i := uint16(0); i < clearCode; i++ {
		l.dict[i] = dictCell{prefix: MaxDictSize, suffix: uint8(i)}
	}
	l.sp = 0
	prev := -1
	var prevFirst uint8
	for !r.done() {
		code, err := bs.ReadCode(width)
		if err != nil {
			if errors.Is(err, errEndOfData) {
				return fmt.Errorf("%w: data ended before end code", ErrCorruptStream)
			}
			return err
		}
		if code == clearCode {
			width = uint(minCodeSize) + 1
			limit = uint16(1) << width
			next = endCode + 1
			prev = -1
			continue
		}
		if code == endCode {
			return nil
		}
		inCode := code
		if code > next || (code == next && prev < 0) {
			return fmt.Errorf("%w: code %d references undefined entry (next %d)", ErrCorruptStream, code, next)
		}
		if code == next {
			if err := l.push(prevFirst); err != nil {
				return err
			}
			code = uint16(prev)
		}
		for code > endCode {
			if err := l.push(l.dict[code].suffix); err != nil {
				return err
			}
			code = l.dict[code].prefix
		}
		if code >= clearCode {
			return fmt.Errorf("%w: control code %d inside string", ErrCorruptStream, code)
		}
		first := l.dict[code].suffix
		if err := l.push(first); err != nil {
			return err
		}
		for l.sp > 0 {
			if err := r.emit(l.pop()); err != nil {
				return err
			}
		}
		if prev >= 0 && next < MaxDictSize {
			l.dict[next] = dictCell{prefix: uint16(prev), suffix: first}
			next++
			if next >= limit && width < MaxCodeWidth {
				width++
				limit <<= 1
			}
		}
		prev = int(inCode)
		prevFirst = first
	}
	return nil
}
