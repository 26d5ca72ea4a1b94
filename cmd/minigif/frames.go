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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/xiaoqidun/minigif"
	"golang.org/x/image/bmp"
)

// runFrames 合成全部帧并导出为BMP
func runFrames(args []string) error {
	fs := flag.NewFlagSet("frames", flag.ContinueOnError)
	var cf commonFlags
	cf.register(fs)
	out := fs.String("o", ".", "output directory")
	prefix := fs.String("prefix", "frame", "output file name prefix")
	path, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	src, err := openSource(path)
	if err != nil {
		return err
	}
	defer src.Close()
	anim, err := minigif.DecodeAll(src, cf.options())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	for i, frame := range anim.Frames {
		name := filepath.Join(*out, fmt.Sprintf("%s_%03d.bmp", *prefix, i))
		if err := writeBMP(name, frame); err != nil {
			return err
		}
		fmt.Printf("%s %s (delay %d)\n", green("wrote"), name, anim.Delays[i])
	}
	return nil
}

// writeBMP 写入单帧BMP文件
func writeBMP(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := bmp.Encode(w, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
